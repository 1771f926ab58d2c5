package constvars

const (
	RolePatient = "Patient"
	RoleDoctor  = "Doctor"
	RoleAdmin   = "Admin"
	RoleSystem  = "System"
)
