package handler

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
)

var verifyPage = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
{{if .Detail}}<p>{{.Detail}}</p>{{end}}
{{if .LoginURL}}<a href="{{.LoginURL}}">Go to login</a>{{end}}
</body>
</html>
`))

type verifyPageData struct {
	Title    string
	Detail   string
	LoginURL string
}

func renderVerifyPage(c *gin.Context, status int, data verifyPageData) {
	c.Render(status, render.HTML{Template: verifyPage, Name: "verify", Data: data})
}

func renderVerifySuccess(c *gin.Context, loginURL string) {
	renderVerifyPage(c, http.StatusOK, verifyPageData{
		Title:    "Account activated!",
		Detail:   "You can now log in.",
		LoginURL: loginURL,
	})
}

func renderVerifyFailure(c *gin.Context, status int) {
	renderVerifyPage(c, status, verifyPageData{Title: "Invalid or expired link."})
}
