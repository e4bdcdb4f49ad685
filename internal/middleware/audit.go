package middleware

import (
	"bytes"
	"io"
	"strings"

	"github.com/estatedesk/portal/internal/models"
	"github.com/estatedesk/portal/internal/services"
	"github.com/gin-gonic/gin"
)

const maxAuditBody = 2000

// AuditLog records write operations (POST/PUT/DELETE) to audit_logs.
func AuditLog(audit *services.AuditLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != "POST" && method != "PUT" && method != "DELETE" {
			c.Next()
			return
		}

		var body string
		if c.Request.Body != nil {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			body = string(bodyBytes)
			if len(body) > maxAuditBody {
				body = body[:maxAuditBody] + "...[truncated]"
			}
			body = maskSensitiveFields(body)
		}

		c.Next()

		module, action := parseRouteInfo(c.FullPath(), method)
		audit.Record(c.Request.Context(), &models.AuditLog{
			Module: module,
			Action: action,
			Method: method,
			Path:   c.Request.URL.Path,
			Status: c.Writer.Status(),
			UserID: GetUserID(c),
			Role:   GetRole(c),
			IP:     c.ClientIP(),
			Body:   body,
		})
	}
}

// parseRouteInfo extracts module and action from a Gin route pattern.
// e.g. "/api/projects/:id/consultants" + "POST" → module="Projects", action="Assign Consultants"
func parseRouteInfo(fullPath, method string) (module, action string) {
	path := strings.TrimPrefix(fullPath, "/api/")
	parts := strings.Split(path, "/")

	module = parts[0]
	if module == "" {
		module = "unknown"
	}
	module = titleCase(module)

	// the last literal segment after the resource id names a sub-resource
	var sub string
	for _, p := range parts[1:] {
		if p != "" && !strings.HasPrefix(p, ":") {
			sub = p
		}
	}

	switch method {
	case "POST":
		action = "Create"
		if sub != "" {
			action = "Assign " + titleCase(sub)
		}
	case "PUT":
		action = "Update"
	case "DELETE":
		action = "Delete"
		if sub != "" {
			action = "Remove " + titleCase(sub)
		}
	default:
		action = method
	}
	if sub == "sync" || sub == "setup" {
		action = titleCase(sub)
	}

	return module, action
}

// titleCase turns "hours-logs" into "Hours Logs".
func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// maskSensitiveFields replaces sensitive values in JSON body
func maskSensitiveFields(body string) string {
	sensitiveKeys := []string{"password", "secret", "token", "access_token", "email", "phone"}
	lower := strings.ToLower(body)
	for _, key := range sensitiveKeys {
		if strings.Contains(lower, "\""+key+"\"") {
			body = maskJSONValue(body, key)
		}
	}
	return body
}

// maskJSONValue does a best-effort mask of the first JSON string value for key.
func maskJSONValue(body, key string) string {
	lower := strings.ToLower(body)
	idx := strings.Index(lower, "\""+key+"\"")
	if idx == -1 {
		return body
	}

	colonIdx := strings.Index(body[idx+len(key)+2:], ":")
	if colonIdx == -1 {
		return body
	}
	valueStart := idx + len(key) + 2 + colonIdx + 1

	for valueStart < len(body) && (body[valueStart] == ' ' || body[valueStart] == '\t') {
		valueStart++
	}
	if valueStart >= len(body) || body[valueStart] != '"' {
		return body
	}

	endQuote := strings.Index(body[valueStart+1:], "\"")
	if endQuote == -1 {
		return body
	}
	return body[:valueStart+1] + "***" + body[valueStart+1+endQuote:]
}
