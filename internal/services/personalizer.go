package services

import (
	"regexp"
	"strings"

	"github.com/reachpoint/crm-backend/internal/models"
	"github.com/reachpoint/crm-backend/pkg/mailer"
)

var (
	customerNameToken  = regexp.MustCompile(`(?i)\{customername\}`)
	firstNameToken     = regexp.MustCompile(`(?i)\{customerfirstname\}`)
	markupTag          = regexp.MustCompile(`<[^>]*>`)
	newlineReplacement = "<br/>"
)

// PersonalizeMessage expands the personalization tokens of a campaign
// subject and body for one customer and renders the HTML and plain-text
// variants. Output is deterministic for a given template and customer.
func PersonalizeMessage(subject, body string, customer *models.Customer) *mailer.Email {
	firstName := customer.FirstName()

	personalizedBody := customerNameToken.ReplaceAllString(body, firstName)
	personalizedSubject := firstNameToken.ReplaceAllString(subject, firstName)

	htmlBody := strings.ReplaceAll(personalizedBody, "\n", newlineReplacement)
	plainText := markupTag.ReplaceAllString(htmlBody, "")

	return &mailer.Email{
		To:      customer.Email,
		Subject: personalizedSubject,
		Text:    plainText,
		HTML:    renderHTMLDocument(htmlBody),
	}
}

// renderHTMLDocument wraps a personalized body in the campaign mail layout
func renderHTMLDocument(body string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html>\n<head>\n<meta charset=\"utf-8\"/>\n")
	b.WriteString("<style>body{font-family:Arial,sans-serif;color:#333;margin:0;padding:0}")
	b.WriteString(".container{max-width:600px;margin:0 auto;padding:24px}</style>\n")
	b.WriteString("</head>\n<body>\n<div class=\"container\">\n")
	b.WriteString(body)
	b.WriteString("\n</div>\n</body>\n</html>")
	return b.String()
}
