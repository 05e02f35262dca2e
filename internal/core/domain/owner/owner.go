package owner

// Event is an externally-registered owner record arriving on the NEW_OWNER
// channel. It is keyed by Doc and carries no version: replays are expected
// and profile fields are last-write-wins.
type Event struct {
	ID         string  `json:"id"`
	Doc        string  `json:"doc"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Defaulting *string `json:"defaulting"`
}
