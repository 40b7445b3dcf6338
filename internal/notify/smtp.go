package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the outbound SMTP provider settings.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// SMTPNotifier sends completion emails through an SMTP relay.
type SMTPNotifier struct {
	cfg    SMTPConfig
	logger zerolog.Logger
	// send is replaced in tests to avoid dialing.
	send func(ctx context.Context, msg *mail.Msg) error
}

// NewSMTP creates an SMTPNotifier.
func NewSMTP(cfg SMTPConfig, logger zerolog.Logger) *SMTPNotifier {
	n := &SMTPNotifier{cfg: cfg, logger: logger}
	n.send = n.dialAndSend
	return n
}

type template struct {
	subject  string
	greeting string
	body     string
	closing  string
}

var templates = map[string]template{
	"en": {
		subject:  "Your racket is ready for pickup",
		greeting: "Hi %s,",
		body:     "Good news: your %s has been strung and is ready for pickup at %s.",
		closing:  "See you soon,",
	},
	"fr": {
		subject:  "Votre raquette est prête",
		greeting: "Bonjour %s,",
		body:     "Bonne nouvelle : votre %s a été cordée et vous attend chez %s.",
		closing:  "À bientôt,",
	},
}

// NotifyCompletion sends the "racket ready" email. A customer without an email
// is skipped.
func (n *SMTPNotifier) NotifyCompletion(ctx context.Context, c Completion) (bool, error) {
	to := strings.TrimSpace(c.CustomerEmail)
	if to == "" {
		return false, nil
	}
	msg, err := n.buildMessage(to, c)
	if err != nil {
		return false, err
	}
	if err := n.send(ctx, msg); err != nil {
		return false, fmt.Errorf("send completion email: %w", err)
	}
	n.logger.Info().Str("order_id", c.OrderID).Msg("completion email sent")
	return true, nil
}

func (n *SMTPNotifier) buildMessage(to string, c Completion) (*mail.Msg, error) {
	tpl, ok := templates[strings.ToLower(strings.TrimSpace(c.Language))]
	if !ok {
		tpl = templates["en"]
	}

	racket := strings.TrimSpace(c.RacketBrand + " " + c.RacketModel)
	if racket == "" {
		racket = "racket"
	}
	name := c.CustomerName
	if name == "" {
		name = "there"
	}
	store := c.StoreName
	if store == "" {
		store = n.cfg.FromName
	}

	greeting := fmt.Sprintf(tpl.greeting, name)
	body := fmt.Sprintf(tpl.body, racket, store)

	msg := mail.NewMsg(mail.WithNoDefaultUserAgent())
	if err := msg.FromFormat(n.cfg.FromName, n.cfg.FromEmail); err != nil {
		return nil, fmt.Errorf("set email from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("set email recipient: %w", err)
	}
	msg.Subject(tpl.subject)

	htmlBody := fmt.Sprintf(`
	<html>
		<body>
			<p>%s</p>
			<p>%s</p>
			<p>%s<br>%s</p>
		</body>
	</html>`,
		html.EscapeString(greeting), html.EscapeString(body),
		html.EscapeString(tpl.closing), html.EscapeString(store))
	plainBody := fmt.Sprintf("%s\n\n%s\n\n%s\n%s", greeting, body, tpl.closing, store)

	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	msg.AddAlternativeString(mail.TypeTextPlain, plainBody)
	return msg, nil
}

func (n *SMTPNotifier) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(n.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(10 * time.Second),
	}
	if n.cfg.Username != "" && n.cfg.Password != "" {
		opts = append(opts,
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password),
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
		)
	}
	client, err := mail.NewClient(n.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}
