package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/gofiber/fiber/v2"
)

// ValidateTwilioSignature validates that the webhook request is from Twilio
func ValidateTwilioSignature() fiber.Handler {
	return func(c *fiber.Ctx) error {
		twilioSignature := c.Get("X-Twilio-Signature")
		if twilioSignature == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing Twilio signature",
			})
		}

		authToken := os.Getenv("TWILIO_AUTH_TOKEN")
		if authToken == "" {
			log.Println("ERROR: TWILIO_AUTH_TOKEN not set, cannot validate webhook")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Server configuration error",
			})
		}

		formParams := make(map[string]string)
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			formParams[string(key)] = string(value)
		})

		expected := calculateTwilioSignature(authToken, fullURL(c), formParams)
		if subtle.ConstantTimeCompare([]byte(twilioSignature), []byte(expected)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid signature",
			})
		}

		return c.Next()
	}
}

func fullURL(c *fiber.Ctx) string {
	protocol := "https"
	if c.Protocol() == "http" {
		protocol = "http"
	}
	return fmt.Sprintf("%s://%s%s", protocol, c.Hostname(), c.Path())
}

// calculateTwilioSignature implements Twilio's request signing scheme:
// append each form parameter (sorted by key) to the URL, HMAC-SHA1 with
// the auth token, base64 encode.
func calculateTwilioSignature(authToken, url string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := url
	for _, k := range keys {
		data += k + params[k]
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
