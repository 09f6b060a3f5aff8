// Package notify drains the email-notification queue: rows are appended when
// users and clinics are created, and the worker renders a template per
// email_type, delivers it, and marks the row processed. Delivery is
// at-least-once; one failing row never blocks the rest of the queue.
package notify

import (
	"fmt"
	"sync"

	"github.com/osteele/liquid"

	"github.com/clinichq/admin-api/internal/domain"
)

// Message is a rendered notification ready for delivery.
type Message struct {
	To      string
	Subject string
	HTML    string
}

var templates = map[domain.EmailType]struct {
	subject string
	body    string
}{
	domain.EmailNewUser: {
		subject: "Welcome to ClinicHQ, {{ user_name }}",
		body: `<h2>Welcome, {{ user_name }}!</h2>
<p>Your ClinicHQ account is ready. Sign in with:</p>
<ul>
  <li>Email: {{ user_email }}</li>
  {% if password != "" %}<li>Temporary password: {{ password }}</li>{% endif %}
</ul>
<p>Please change your password after your first sign-in.</p>`,
	},
	domain.EmailClinicAdded: {
		subject: "{{ clinic_name }} was added to your ClinicHQ account",
		body: `<h2>New clinic: {{ clinic_name }}</h2>
<p>Hi {{ user_name }}, the clinic <strong>{{ clinic_name }}</strong> is now
connected to your dashboard. Leads, bookings, and spend for it will start
appearing on your next visit.</p>`,
	},
}

// Renderer renders queue rows into deliverable messages with Liquid
// templates, caching parsed templates per email type.
type Renderer struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewRenderer creates a template renderer.
func NewRenderer() *Renderer {
	return &Renderer{engine: liquid.NewEngine()}
}

func (r *Renderer) parse(key, src string) (*liquid.Template, error) {
	if cached, ok := r.cache.Load(key); ok {
		return cached.(*liquid.Template), nil
	}
	tpl, err := r.engine.ParseString(src)
	if err != nil {
		return nil, err
	}
	r.cache.Store(key, tpl)
	return tpl, nil
}

// Render produces the message for one queue row. Unknown email types are an
// error so a bad producer shows up in the worker log instead of silently
// draining rows.
func (r *Renderer) Render(n *domain.EmailNotification) (*Message, error) {
	tmpl, ok := templates[n.EmailType]
	if !ok {
		return nil, fmt.Errorf("unknown email type %q", n.EmailType)
	}

	bindings := map[string]interface{}{
		"user_name":   n.UserName,
		"user_email":  n.UserEmail,
		"clinic_name": n.ClinicName,
		"password":    n.Password,
	}

	subjTpl, err := r.parse(string(n.EmailType)+":subject", tmpl.subject)
	if err != nil {
		return nil, fmt.Errorf("parse subject template: %w", err)
	}
	subject, err := subjTpl.RenderString(bindings)
	if err != nil {
		return nil, fmt.Errorf("render subject: %w", err)
	}

	bodyTpl, err := r.parse(string(n.EmailType)+":body", tmpl.body)
	if err != nil {
		return nil, fmt.Errorf("parse body template: %w", err)
	}
	html, err := bodyTpl.RenderString(bindings)
	if err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}

	return &Message{To: n.UserEmail, Subject: subject, HTML: html}, nil
}
