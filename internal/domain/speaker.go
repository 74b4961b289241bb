package domain

// SpeakerProfile holds the speaker contact and professional fields captured with a submission.
// Photo is a data URI ("data:<mime>;base64,<payload>").
// swagger:model SpeakerProfile
type SpeakerProfile struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	RoleTitle   string `json:"role_title"`
	Institution string `json:"institution"`
	Biography   string `json:"biography"`
	Photo       string `json:"photo"`
}

// TopicCategories lists the categories offered on the registration form.
var TopicCategories = []string{
	"AI/ML",
	"Career Path",
	"Business Management",
	"SEO",
	"Startup",
	"Data Science",
	"DevOps",
	"Project Management",
	"Web Development",
	"Mobile Development",
	"UI/UX Design",
	"Tips & Trick",
	"Blockchain",
	"Web3",
	"Finance",
}

// TopicCategoryOther selects the free-text category field.
const TopicCategoryOther = "Lainnya"

// TimeSlots are the bookable start times (HH:MM, event timezone).
var TimeSlots = []string{"10:00", "13:00", "16:00", "20:00"}

// IsTimeSlot reports whether t is one of TimeSlots.
func IsTimeSlot(t string) bool {
	for _, s := range TimeSlots {
		if s == t {
			return true
		}
	}
	return false
}
