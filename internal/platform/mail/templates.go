package mail

import "html/template"

type activationData struct {
	Name  string
	Link  string
	Brand string
}

type resetData struct {
	Link  string
	Brand string
}

var activationTmpl = template.Must(template.New("activation").Parse(`<h1>Hello {{.Name}},</h1>
<p>Thanks for signing up to {{.Brand}}. Click the link below to activate your account:</p>
<p><a href="{{.Link}}">Activate my account</a></p>
<p>If you did not request this registration, ignore this email.</p>
`))

var resetTmpl = template.Must(template.New("reset").Parse(`<h1>Password reset</h1>
<p>You asked to reset your {{.Brand}} password. The link below expires in one hour.</p>
<p><a href="{{.Link}}">Reset my password</a></p>
<p>If you did not request this, ignore this email.</p>
`))
