package notification

import (
	"fmt"
	"net/url"
	"time"

	"job-board/internal/domain/application"
	"job-board/internal/infrastructure/mailer"

	"github.com/microcosm-cc/bluemonday"
)

// Every caller-supplied value is run through the strict policy before it is
// placed into HTML.
var strict = bluemonday.StrictPolicy()

func clean(s string) string {
	return strict.Sanitize(s)
}

func NewApplicant(to, jobTitle, applicantName, resumeURL string) mailer.Message {
	return mailer.Message{
		To:      to,
		Subject: "New applicant for " + jobTitle,
		HTML: fmt.Sprintf(
			`<p>New application for %s from %s. Resume: <a href="%s">%s</a></p>`,
			clean(jobTitle), clean(applicantName), clean(resumeURL), clean(resumeURL),
		),
	}
}

// StatusChanged builds the applicant email for a status change. ok is false
// for statuses that do not notify.
func StatusChanged(to, jobTitle string, status application.Status) (m mailer.Message, ok bool) {
	title := clean(jobTitle)
	switch status {
	case application.StatusInterview:
		m = mailer.Message{
			Subject: "You've been selected for an interview for " + jobTitle,
			HTML:    fmt.Sprintf("<p>Congrats! You've been invited to interview for %s. Status: Interview</p>", title),
		}
	case application.StatusRejected:
		m = mailer.Message{
			Subject: "Application update for " + jobTitle,
			HTML:    fmt.Sprintf("<p>We regret to inform you that your application for %s was Rejected.</p>", title),
		}
	case application.StatusHired:
		m = mailer.Message{
			Subject: "Congratulations! Hired for " + jobTitle,
			HTML:    fmt.Sprintf("<p>Great news! Your application for %s resulted in Hired!</p>", title),
		}
	default:
		return mailer.Message{}, false
	}
	m.To = to
	return m, true
}

func Verification(to, name, token string, ttl time.Duration, publicURL string) mailer.Message {
	return mailer.Message{
		To:      to,
		Subject: "Verify your email",
		HTML: fmt.Sprintf(
			"<p>Hi %s, here is your verification token %s. Token expires in %d minutes.</p>%s",
			clean(name), clean(token), int(ttl.Minutes()), verifyLink(publicURL, token),
		),
	}
}

func VerificationReissued(to, name, token string, ttl time.Duration, publicURL string) mailer.Message {
	return mailer.Message{
		To:      to,
		Subject: "New verification link",
		HTML: fmt.Sprintf(
			"<p>Hi %s, your verification link expired. Here is a new token %s. Token expires in %d minutes.</p>%s",
			clean(name), clean(token), int(ttl.Minutes()), verifyLink(publicURL, token),
		),
	}
}

func verifyLink(publicURL, token string) string {
	if publicURL == "" {
		return ""
	}
	u := publicURL + "/api/auth/verify-email?token=" + url.QueryEscape(token)
	return fmt.Sprintf(`<p><a href="%s">Verify email</a></p>`, u)
}
