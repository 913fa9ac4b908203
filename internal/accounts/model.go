package accounts

import "time"

// Account is a registered user identified by a unique username. The credential
// is stored only as a bcrypt hash.
type Account struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	Username       string    `bson:"username" json:"username"`
	CredentialHash string    `bson:"credentialHash" json:"-"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updatedAt"`
}
