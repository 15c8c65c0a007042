package registry

// ValidateName applies the shared username/room-name rule: length
// 1..=20, ASCII alphanumeric plus '_' and '-' only.
func ValidateName(name string) error {
	if len(name) < 1 || len(name) > 20 {
		return ErrNameInvalid
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return ErrNameInvalid
		}
	}
	return nil
}
