package predictions

// Class is a prediction outcome with every label the service uses for it.
type Class struct {
	Name   string
	Title  string
	Labels []string
}

// The service reports classes either by name or as "1"/"0". Both spellings
// are accepted; the binary form is a compatibility shim, not a contract.
var (
	Sensitizer    = Class{Name: "sensitizer", Title: "Sensitizer", Labels: []string{"Sensitizer", "1"}}
	NonSensitizer = Class{Name: "non-sensitizer", Title: "Non-sensitizer", Labels: []string{"Non-sensitizer", "0"}}
)

// Classes lists the known outcome classes.
func Classes() []Class { return []Class{Sensitizer, NonSensitizer} }

// Matches reports whether label is exactly one of the class labels.
func (c Class) Matches(label string) bool {
	for _, l := range c.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// ClassOf returns the class a label belongs to.
func ClassOf(label string) (Class, bool) {
	for _, c := range Classes() {
		if c.Matches(label) {
			return c, true
		}
	}
	return Class{}, false
}
