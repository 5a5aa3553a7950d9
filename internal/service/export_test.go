package service

func SetPasswordCompare(s *AuthService, compare func(hash, password []byte) error) {
	s.compare = compare
}
