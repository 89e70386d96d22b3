package store

// Gender values allowed in a profile record. Empty string means unset.
const (
	GenderMale      = "male"
	GenderFemale    = "female"
	GenderNonBinary = "non_binary"
)

// MaxKinks is the maximum number of kink tags a profile may carry.
const MaxKinks = 24

// UserProfile represents per-user profile data used for AI personalization.
type UserProfile struct {
	UserID    int32
	Nickname  string
	Gender    string
	Kinks     []string
	CreatedTs int64
	UpdatedTs int64
}

// FindUserProfile specifies the conditions for finding a user profile.
type FindUserProfile struct {
	UserID *int32
}

// UpdateUserProfile specifies the data for updating a user profile.
// Nil fields are left untouched; all set fields are applied as one statement.
type UpdateUserProfile struct {
	UserID    int32
	Nickname  *string
	Gender    *string
	Kinks     *[]string
	UpdatedTs int64
}
