package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/api"
)

// enumerationSafe is the fixed public outcome of an operation whose result
// could otherwise reveal whether an account exists. Every branch of such an
// operation answers through the same value so the bodies stay byte-identical.
type enumerationSafe struct {
	status int
	body   api.Response
}

var (
	// loginRejected covers both unknown email and wrong password.
	loginRejected = enumerationSafe{status: http.StatusUnauthorized, body: api.Fail("Invalid credentials.")}

	// resetRequested covers forgot_password whether or not the email exists.
	resetRequested = enumerationSafe{status: http.StatusOK, body: api.OK("If the email address is registered, you will receive a link to reset your password.")}
)

func (r enumerationSafe) respond(c *gin.Context) {
	c.JSON(r.status, r.body)
}
