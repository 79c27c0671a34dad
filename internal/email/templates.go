package email

import (
	"fmt"
	"html"

	"recshelf/internal/config"
	"recshelf/internal/models"
)

// Templates provides email template generation.
type Templates struct {
	cfg *config.Config
}

// NewTemplates creates a new templates instance.
func NewTemplates(cfg *config.Config) *Templates {
	return &Templates{cfg: cfg}
}

// baseHTML wraps content in a consistent HTML email template.
func (t *Templates) baseHTML(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #7c3aed; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #f9fafb; padding: 20px; border: 1px solid #e5e7eb; }
        .footer { background: #f3f4f6; padding: 15px; text-align: center; font-size: 12px; color: #6b7280; border-radius: 0 0 8px 8px; border: 1px solid #e5e7eb; border-top: none; }
        .button { display: inline-block; background: #7c3aed; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin: 10px 0; }
        .button:hover { background: #6d28d9; }
        .info-box { background: white; border: 1px solid #e5e7eb; border-radius: 6px; padding: 15px; margin: 15px 0; }
        .label { font-weight: 600; color: #374151; }
        .value { color: #6b7280; }
        .quote { border-left: 3px solid #7c3aed; padding-left: 12px; color: #4b5563; font-style: italic; }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>
    <div class="content">
        %s
    </div>
    <div class="footer">
        <p>This email was sent by %s</p>
        <p><a href="%s">%s</a></p>
    </div>
</body>
</html>`, html.EscapeString(title), html.EscapeString(t.cfg.SiteTitle), content, html.EscapeString(t.cfg.SiteTitle), t.cfg.BaseURL, t.cfg.BaseURL)
}

// RecommendationReceived generates the email sent to a recipient when a
// friend recommends something to them.
func (t *Templates) RecommendationReceived(rec *models.Recommendation, sender *models.User, domainLabel string) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] %s recommended %s to you", t.cfg.SiteTitle, sender.DisplayName(), rec.Title)

	message := ""
	if rec.SentMessage != "" {
		message = fmt.Sprintf(`<p class="quote">%s</p>`, html.EscapeString(rec.SentMessage))
	}

	creator := ""
	if rec.Creator != "" {
		creator = fmt.Sprintf(`<p><span class="label">By:</span> %s</p>`, html.EscapeString(rec.Creator))
	}

	content := fmt.Sprintf(`
        <p>%s thinks you should check this out.</p>

        <div class="info-box">
            <p><span class="label">Title:</span> %s</p>
            %s
            <p><span class="label">Category:</span> %s</p>
        </div>
        %s

        <p style="text-align: center;">
            <a href="%s/inbox" class="button">View in your inbox</a>
        </p>
    `,
		html.EscapeString(sender.DisplayName()),
		html.EscapeString(rec.Title),
		creator,
		html.EscapeString(domainLabel),
		message,
		t.cfg.BaseURL,
	)

	htmlBody = t.baseHTML(subject, content)

	textMessage := ""
	if rec.SentMessage != "" {
		textMessage = fmt.Sprintf("\nThey said: %q\n", rec.SentMessage)
	}

	textBody = fmt.Sprintf(`%s recommended %s to you

Title: %s
Category: %s
%s
View it at: %s/inbox

--
%s
%s`,
		sender.DisplayName(),
		rec.Title,
		rec.Title,
		domainLabel,
		textMessage,
		t.cfg.BaseURL,
		t.cfg.SiteTitle,
		t.cfg.BaseURL,
	)

	return
}

// FriendRequestReceived generates the email sent to the addressee of a new
// friend request.
func (t *Templates) FriendRequestReceived(requester *models.User) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] %s wants to be your friend", t.cfg.SiteTitle, requester.DisplayName())

	content := fmt.Sprintf(`
        <p>%s (%s) sent you a friend request. Friends can trade recommendations with each other.</p>

        <p style="text-align: center;">
            <a href="%s/profile" class="button">Respond to request</a>
        </p>
    `,
		html.EscapeString(requester.DisplayName()),
		html.EscapeString(requester.Email),
		t.cfg.BaseURL,
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`%s (%s) sent you a friend request.

Respond at: %s/profile

--
%s
%s`,
		requester.DisplayName(),
		requester.Email,
		t.cfg.BaseURL,
		t.cfg.SiteTitle,
		t.cfg.BaseURL,
	)

	return
}

// FriendRequestAccepted generates the email sent back to the requester when
// their friend request is accepted.
func (t *Templates) FriendRequestAccepted(addressee *models.User) (subject, htmlBody, textBody string) {
	subject = fmt.Sprintf("[%s] %s accepted your friend request", t.cfg.SiteTitle, addressee.DisplayName())

	content := fmt.Sprintf(`
        <p>%s accepted your friend request. You can now recommend things to each other.</p>

        <p style="text-align: center;">
            <a href="%s" class="button">Send a recommendation</a>
        </p>
    `,
		html.EscapeString(addressee.DisplayName()),
		t.cfg.BaseURL,
	)

	htmlBody = t.baseHTML(subject, content)

	textBody = fmt.Sprintf(`%s accepted your friend request.

Send them a recommendation at: %s

--
%s
%s`,
		addressee.DisplayName(),
		t.cfg.BaseURL,
		t.cfg.SiteTitle,
		t.cfg.BaseURL,
	)

	return
}
