package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// World routing/state.
	ErrWorldNotFound = "E_WORLD_NOT_FOUND"
	ErrWorldDisabled = "E_WORLD_DISABLED"
	ErrNoActor       = "E_NO_ACTOR"

	// Incident layer.
	ErrBadRequest      = "E_BAD_REQUEST"
	ErrUnknownIncident = "E_UNKNOWN_INCIDENT"
	ErrRestricted      = "E_RESTRICTED"
	ErrInvalidProfile  = "E_INVALID_PROFILE"
	ErrNoSpace         = "E_NO_SPACE"
	ErrPersistence     = "E_PERSISTENCE"
	ErrUnavailable     = "E_UNAVAILABLE"
	ErrInternal        = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrWorldNotFound:   {},
	ErrWorldDisabled:   {},
	ErrNoActor:         {},
	ErrBadRequest:      {},
	ErrUnknownIncident: {},
	ErrRestricted:      {},
	ErrInvalidProfile:  {},
	ErrNoSpace:         {},
	ErrPersistence:     {},
	ErrUnavailable:     {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
