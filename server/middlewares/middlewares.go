package middlewares

import (
	"net/http"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
	"github.com/gin-gonic/gin"

	. "github.com/forumjet/alertmux/utils/log"
)

var (
	// cognitoClient is a thread safe client that performs user
	// authorization based on jwt token. Before using this client, make
	// sure it's initialized correctly.
	cognitoClient *cognitoidentityprovider.CognitoIdentityProvider
)

// Setup initializes all package scoped variables that are needed to
// perform middleware functionalities. This function must be called
// before any middleware is used.
func Setup() {
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		// Abort directly if Cognito isn't set up successfully, which is
		// crucial for server side authorization.
		Log.Fatal("fail to setup Cognito client: ", err)
	}
	cognitoClient = cognitoidentityprovider.New(sess)
}

// JWT middleware fetches the user jwt from the "token" query parameter,
// validates it against Cognito and injects the user's id into the "sub"
// header. It returns error on token not provided or token invalid.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		jwt := c.Query("token")

		if jwt == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"msg": "empty jwt token",
			})
			c.Abort()
			return
		}

		user, err := cognitoClient.GetUser(&cognitoidentityprovider.GetUserInput{AccessToken: &jwt})
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"msg": err.Error(),
			})
			c.Abort()
			return
		}

		// Successfully validated the jwt token, replace the header field
		// "token" with the user's sub (id).
		c.Request.Header.Del("token")
		c.Request.Header.Add("sub", *user.Username)

		c.Next()
	}
}
