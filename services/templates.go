package services

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/n11047500/Capstone-2024-sub000/utils"
	"github.com/shopspring/decimal"
)

var (
	orderConfirmationTemplate = template.Must(template.New("order_confirmation").Parse(`<h2>Thank you for your order, {{.CustomerName}}!</h2>
<p>Order #{{.OrderID}} ({{.OrderType}})</p>
{{if .StreetAddress}}<p>Delivering to: {{.StreetAddress}}</p>{{end}}
<table>
<tr><th>Product</th><th>Option</th><th>Qty</th><th>Price</th></tr>
{{range .Lines}}<tr><td>{{.Name}}</td><td>{{.Option}}</td><td>{{.Quantity}}</td><td>${{.TotalPrice.StringFixed 2}}</td></tr>
{{end}}</table>
<p><strong>Total: ${{.Total.StringFixed 2}}</strong></p>`))

	customOrderTemplate = template.Must(template.New("custom_order").Parse(`<h2>New custom order request</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
{{if .Phone}}<p><strong>Phone:</strong> {{.Phone}}</p>{{end}}
{{if .PlanterType}}<p><strong>Planter type:</strong> {{.PlanterType}}</p>{{end}}
{{if .Dimensions}}<p><strong>Dimensions:</strong> {{.Dimensions}}</p>{{end}}
{{if .Colour}}<p><strong>Colour:</strong> {{.Colour}}</p>{{end}}
{{if .Quantity}}<p><strong>Quantity:</strong> {{.Quantity}}</p>{{end}}
{{if .AdditionalInfo}}<p><strong>Additional information:</strong> {{.AdditionalInfo}}</p>{{end}}
{{if .AttachmentURL}}<p><a href="{{.AttachmentURL}}">Download {{.AttachmentName}}</a></p>{{end}}`))

	contactTemplate = template.Must(template.New("contact").Parse(`<h2>New contact message</h2>
<p><strong>From:</strong> {{.Name}} &lt;{{.Email}}&gt;</p>
<p>{{.Message}}</p>`))

	passwordResetTemplate = template.Must(template.New("password_reset").Parse(`<p>Hi {{.Name}},</p>
<p>We received a request to reset your password. This link is valid for one hour:</p>
<p><a href="{{.ResetURL}}">{{.ResetURL}}</a></p>
<p>If you did not request a reset you can ignore this email.</p>`))
)

// OrderConfirmationData fills the order confirmation email
type OrderConfirmationData struct {
	CustomerName  string
	CustomerEmail string
	OrderID       uint
	OrderType     string
	StreetAddress string
	Lines         []utils.OrderLine
	Total         decimal.Decimal
}

// CustomOrderData fills the custom order email sent to the store
type CustomOrderData struct {
	Name           string
	Email          string
	Phone          string
	PlanterType    string
	Dimensions     string
	Colour         string
	Quantity       string
	AdditionalInfo string
	AttachmentName string
	AttachmentURL  string
}

// ContactData fills the contact form email
type ContactData struct {
	Name    string
	Email   string
	Message string
}

// PasswordResetData fills the password reset email
type PasswordResetData struct {
	Name     string
	ResetURL string
}

// OrderConfirmationEmail renders the customer's order confirmation
func OrderConfirmationEmail(data OrderConfirmationData) (Email, error) {
	body, err := render(orderConfirmationTemplate, data)
	if err != nil {
		return Email{}, err
	}
	return Email{
		To:       []string{data.CustomerEmail},
		Subject:  fmt.Sprintf("Order Confirmation #%d", data.OrderID),
		HTMLBody: body,
	}, nil
}

// CustomOrderEmail renders a custom order request addressed to the store inbox
func CustomOrderEmail(storeEmail string, data CustomOrderData) (Email, error) {
	body, err := render(customOrderTemplate, data)
	if err != nil {
		return Email{}, err
	}
	return Email{
		To:       []string{storeEmail},
		ReplyTo:  data.Email,
		Subject:  fmt.Sprintf("Custom Order Request from %s", data.Name),
		HTMLBody: body,
	}, nil
}

// ContactEmail renders a contact form message addressed to the store inbox
func ContactEmail(storeEmail string, data ContactData) (Email, error) {
	body, err := render(contactTemplate, data)
	if err != nil {
		return Email{}, err
	}
	return Email{
		To:       []string{storeEmail},
		ReplyTo:  data.Email,
		Subject:  fmt.Sprintf("Contact Form Submission from %s", data.Name),
		HTMLBody: body,
	}, nil
}

// PasswordResetEmail renders the reset link email
func PasswordResetEmail(to string, data PasswordResetData) (Email, error) {
	body, err := render(passwordResetTemplate, data)
	if err != nil {
		return Email{}, err
	}
	return Email{
		To:       []string{to},
		Subject:  "Password Reset Request",
		HTMLBody: body,
	}, nil
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
