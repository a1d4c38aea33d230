// Package domain renders every email the sync pipeline sends.
package domain

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// Message is a single HTML email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// DealerRequest is the data of an international approval request.
type DealerRequest struct {
	OrderID    int64
	Country    string
	Customer   string
	Address    []string
	Items      []DealerItem
	AcceptURL  string
	DeclineURL string
	Deadline   time.Time
}

// DealerItem is one product line shown to the dealer.
type DealerItem struct {
	Name     string
	SKU      string
	Quantity int
}

// OpsAlert is an escalation sent to the operations mailbox.
type OpsAlert struct {
	OrderID int64     `json:"order_id"`
	Title   string    `json:"title"`
	Detail  string    `json:"detail"`
	At      time.Time `json:"at"`
}

var dealerRequestTmpl = template.Must(template.New("dealer_request").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif">
<h2>International order #{{.OrderID}} ({{.Country}})</h2>
<p>A customer in your region placed an order. Please accept it to fulfil it yourself or decline it so we ship it from head office.</p>
<p><strong>{{.Customer}}</strong><br>{{range .Address}}{{.}}<br>{{end}}</p>
<table cellpadding="4" border="1" style="border-collapse:collapse">
<tr><th>Product</th><th>SKU</th><th>Qty</th></tr>
{{range .Items}}<tr><td>{{.Name}}</td><td>{{.SKU}}</td><td>{{.Quantity}}</td></tr>
{{end}}</table>
<p>
<a href="{{.AcceptURL}}" style="padding:8px 16px;background:#2e7d32;color:#fff;text-decoration:none">Accept</a>
&nbsp;
<a href="{{.DeclineURL}}" style="padding:8px 16px;background:#c62828;color:#fff;text-decoration:none">Decline</a>
</p>
<p>Without an answer by {{.Deadline.Format "Mon 02 Jan 2006 15:04 MST"}} the order is shipped from head office.</p>
</body></html>`))

var opsAlertTmpl = template.Must(template.New("ops_alert").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif">
<h2>{{.Title}}</h2>
<p>Order #{{.OrderID}}</p>
<p>{{.Detail}}</p>
<p style="color:#777">{{.At.Format "2006-01-02 15:04 MST"}}</p>
</body></html>`))

// NewDealerRequest renders the accept/decline email for a dealer.
func NewDealerRequest(to string, req DealerRequest) (Message, error) {
	body, err := render(dealerRequestTmpl, req)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Action required: international order #%d", req.OrderID),
		HTML:    body,
	}, nil
}

// NewOpsAlert renders an operations escalation.
func NewOpsAlert(to string, alert OpsAlert) (Message, error) {
	body, err := render(opsAlertTmpl, alert)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("[Order #%d] %s", alert.OrderID, alert.Title),
		HTML:    body,
	}, nil
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
