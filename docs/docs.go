// Package docs registers the OpenAPI description served at /swagger/*.
// The handler annotations in internal/api/handler are the source; regenerate
// with `swag init -g cmd/marketplace/main.go` after changing them.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/v1/auth/register": {"post": {"tags": ["auth"], "summary": "Register a client or executor"}},
        "/v1/auth/login": {"post": {"tags": ["auth"], "summary": "Log in and receive a JWT"}},
        "/v1/me": {
            "get": {"tags": ["auth"], "summary": "Current user", "security": [{"BearerAuth": []}]},
            "patch": {"tags": ["auth"], "summary": "Update name or avatar", "security": [{"BearerAuth": []}]}
        },
        "/v1/me/jobs": {"get": {"tags": ["jobs"], "summary": "Jobs posted by the caller", "security": [{"BearerAuth": []}]}},
        "/v1/me/earnings": {"get": {"tags": ["jobs"], "summary": "Totals over the caller's completed jobs", "security": [{"BearerAuth": []}]}},
        "/v1/categories": {"get": {"tags": ["jobs"], "summary": "Localized job categories"}},
        "/v1/jobs": {
            "get": {"tags": ["jobs"], "summary": "List and filter jobs"},
            "post": {"tags": ["jobs"], "summary": "Post a job", "security": [{"BearerAuth": []}]}
        },
        "/v1/jobs/{id}": {
            "get": {"tags": ["jobs"], "summary": "Job details"},
            "put": {"tags": ["jobs"], "summary": "Edit an open job", "security": [{"BearerAuth": []}]},
            "delete": {"tags": ["jobs"], "summary": "Delete a job", "security": [{"BearerAuth": []}]}
        },
        "/v1/jobs/{id}/similar": {"get": {"tags": ["jobs"], "summary": "Open jobs in the same category or location"}},
        "/v1/jobs/{id}/accept": {"post": {"tags": ["jobs"], "summary": "Executor takes the job", "security": [{"BearerAuth": []}]}},
        "/v1/jobs/{id}/complete": {"post": {"tags": ["jobs"], "summary": "Mark the job completed", "security": [{"BearerAuth": []}]}},
        "/v1/jobs/{id}/cancel": {"post": {"tags": ["jobs"], "summary": "Cancel the job", "security": [{"BearerAuth": []}]}},
        "/v1/jobs/{id}/reports": {"post": {"tags": ["jobs"], "summary": "Report a job", "security": [{"BearerAuth": []}]}},
        "/v1/conversations": {
            "get": {"tags": ["chat"], "summary": "Conversations of the caller", "security": [{"BearerAuth": []}]},
            "post": {"tags": ["chat"], "summary": "Start or reopen a conversation", "security": [{"BearerAuth": []}]}
        },
        "/v1/conversations/{id}": {"get": {"tags": ["chat"], "summary": "Conversation details", "security": [{"BearerAuth": []}]}},
        "/v1/conversations/{id}/messages": {
            "get": {"tags": ["chat"], "summary": "Messages in chronological order", "security": [{"BearerAuth": []}]},
            "post": {"tags": ["chat"], "summary": "Send a message", "security": [{"BearerAuth": []}]}
        },
        "/v1/conversations/{id}/read": {"post": {"tags": ["chat"], "summary": "Mark the conversation read", "security": [{"BearerAuth": []}]}},
        "/v1/conversations/{id}/ws": {"get": {"tags": ["chat"], "summary": "Live message stream over WebSocket", "security": [{"BearerAuth": []}]}},
        "/v1/notifications": {
            "get": {"tags": ["notifications"], "summary": "Notifications and unread count", "security": [{"BearerAuth": []}]},
            "delete": {"tags": ["notifications"], "summary": "Clear all notifications", "security": [{"BearerAuth": []}]}
        },
        "/v1/notifications/read-all": {"post": {"tags": ["notifications"], "summary": "Mark every notification read", "security": [{"BearerAuth": []}]}},
        "/v1/notifications/{id}/read": {"post": {"tags": ["notifications"], "summary": "Mark one notification read", "security": [{"BearerAuth": []}]}},
        "/v1/notifications/{id}": {"delete": {"tags": ["notifications"], "summary": "Delete a notification", "security": [{"BearerAuth": []}]}},
        "/v1/preferences": {
            "get": {"tags": ["preferences"], "summary": "Visitor preferences"},
            "put": {"tags": ["preferences"], "summary": "Update visitor preferences"}
        },
        "/v1/admin/users": {"get": {"tags": ["admin"], "summary": "Users with activity counters", "security": [{"BearerAuth": []}]}},
        "/v1/admin/users/{id}": {"delete": {"tags": ["admin"], "summary": "Delete a user", "security": [{"BearerAuth": []}]}},
        "/v1/admin/users/{id}/block": {"post": {"tags": ["admin"], "summary": "Block a user", "security": [{"BearerAuth": []}]}},
        "/v1/admin/users/{id}/unblock": {"post": {"tags": ["admin"], "summary": "Unblock a user", "security": [{"BearerAuth": []}]}},
        "/v1/admin/jobs": {"get": {"tags": ["admin"], "summary": "All jobs with report counters", "security": [{"BearerAuth": []}]}},
        "/v1/admin/jobs/{id}": {"delete": {"tags": ["admin"], "summary": "Delete a job", "security": [{"BearerAuth": []}]}},
        "/v1/admin/jobs/{id}/block": {"post": {"tags": ["admin"], "summary": "Hide a job from the feed", "security": [{"BearerAuth": []}]}},
        "/v1/admin/jobs/{id}/unblock": {"post": {"tags": ["admin"], "summary": "Restore a job", "security": [{"BearerAuth": []}]}},
        "/v1/admin/reports": {"get": {"tags": ["admin"], "summary": "Reports by status", "security": [{"BearerAuth": []}]}},
        "/v1/admin/reports/{id}": {"patch": {"tags": ["admin"], "summary": "Review a report", "security": [{"BearerAuth": []}]}},
        "/v1/admin/statistics": {"get": {"tags": ["admin"], "summary": "Dashboard statistics", "security": [{"BearerAuth": []}]}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Kyzmat Marketplace API",
	Description:      "Freelance marketplace for Kyrgyzstan: jobs, chat, notifications and moderation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
