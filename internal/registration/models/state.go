package models

// State is the registration machine's position for one session.
type State string

const (
	StateDisconnected    State = "disconnected"
	StateConnecting      State = "connecting"
	StateCheckingStatus  State = "checking_status"
	StateUnregistered    State = "unregistered"
	StateRegisteredUser  State = "registered_user"
	StateRegisteredAdmin State = "registered_admin"
	StateDeactivated     State = "deactivated"
	StateError           State = "error"
)

// Section names one of the mutually exclusive views a client should present.
type Section string

const (
	SectionWallet            Section = "wallet"
	SectionRegistration      Section = "registration"
	SectionAlreadyRegistered Section = "alreadyRegistered"
)

// SectionFor maps a machine state onto the view the client must show.
// Every state maps somewhere; unknown states fall back to the connect view.
func SectionFor(state State) Section {
	switch state {
	case StateUnregistered, StateError:
		return SectionRegistration
	case StateRegisteredUser, StateRegisteredAdmin:
		return SectionAlreadyRegistered
	default:
		return SectionWallet
	}
}

// AlertSeverity classifies a user-visible alert.
type AlertSeverity string

const (
	SeveritySuccess AlertSeverity = "success"
	SeverityError   AlertSeverity = "error"
	SeverityInfo    AlertSeverity = "info"
)

// AlertDismissAfterMS is the fixed auto-dismiss interval clients honor.
const AlertDismissAfterMS = 5000

// Alert is a user-visible notice attached to a response.
type Alert struct {
	Message        string        `json:"message"`
	Severity       AlertSeverity `json:"severity"`
	DismissAfterMS int           `json:"dismiss_after_ms"`
}

// NewAlert builds an alert with the standard auto-dismiss interval.
func NewAlert(message string, severity AlertSeverity) *Alert {
	return &Alert{Message: message, Severity: severity, DismissAfterMS: AlertDismissAfterMS}
}
