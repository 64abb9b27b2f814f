package mail

import (
	"bytes"
	"html/template"

	gomail "github.com/go-mail/mail/v2"
)

type Mailer struct {
	dialer *gomail.Dialer
	sender string
}

func New(host string, port int, username, password, sender string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		sender: sender,
	}
}

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
{{define "subject"}}Welcome to Todo App{{end}}
{{define "plainBody"}}Hi {{.Name}},

Your account has been created. Log in with your email address to start
managing your todos.
{{end}}
{{define "htmlBody"}}<p>Hi {{.Name}},</p>
<p>Your account has been created. Log in with your email address to start
managing your todos.</p>
{{end}}`))

// SendWelcome mails the post-signup greeting. Transient SMTP failures are
// retried up to three times.
func (m *Mailer) SendWelcome(to, name string) error {
	return m.send(to, welcomeTmpl, struct{ Name string }{Name: name})
}

func (m *Mailer) send(to string, tmpl *template.Template, data any) error {
	var subject bytes.Buffer
	if err := tmpl.ExecuteTemplate(&subject, "subject", data); err != nil {
		return err
	}
	var plainBody bytes.Buffer
	if err := tmpl.ExecuteTemplate(&plainBody, "plainBody", data); err != nil {
		return err
	}
	var htmlBody bytes.Buffer
	if err := tmpl.ExecuteTemplate(&htmlBody, "htmlBody", data); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("To", to)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())

	var err error
	for i := 0; i < 3; i++ {
		err = m.dialer.DialAndSend(msg)
		if err == nil {
			break
		}
	}
	return err
}
