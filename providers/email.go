package providers

import (
	"fmt"
	"net/url"

	mail "github.com/xhit/go-simple-mail/v2"
	"golang.org/x/net/context"

	"github.com/storyloom/storyloom-server/config"
)

const inviteTemplate = `<p>You have been invited to join the team <b>%s</b> on Storyloom.</p>
<p><a href="%s">Accept your invitation</a></p>
<p>This link expires in %d days. If you were not expecting this invitation you can ignore this email.</p>`

// InviteMailer delivers invitation join links over SMTP.
type InviteMailer struct {
	smtp    *mail.SMTPClient
	from    string
	baseUrl string
	ttlDays int
}

func NewInviteMailer(smtp *mail.SMTPClient, config *config.Config) *InviteMailer {
	return &InviteMailer{
		smtp:    smtp,
		from:    config.EmailConfig.SmtpUser,
		baseUrl: config.InviteConfig.BaseUrl,
		ttlDays: config.InviteConfig.TtlHours / 24,
	}
}

func (m *InviteMailer) SendInvitation(ctx context.Context, to, teamName, token string) error {
	link := fmt.Sprintf("%s/invite?token=%s", m.baseUrl, url.QueryEscape(token))

	msg := mail.NewMSG()
	msg.SetFrom(m.from).
		AddTo(to).
		SetSubject(fmt.Sprintf("Invitation to join %s", teamName))
	msg.SetBody(mail.TextHTML, fmt.Sprintf(inviteTemplate, teamName, link, m.ttlDays))

	if msg.Error != nil {
		return msg.Error
	}

	return msg.Send(m.smtp)
}
