package seeder

// Demo account addresses created by Defaults.
const (
	DemoCompanyEmail   = "hiring@acme.example"
	DemoApplicantEmail = "jane.doe@applicant.example"
)

// Defaults returns the demo data set. Every demo account shares password.
func Defaults(password string) []Seeder {
	return []Seeder{
		AccountsSeeder{Password: password},
		JobsSeeder{CompanyEmail: DemoCompanyEmail},
	}
}
