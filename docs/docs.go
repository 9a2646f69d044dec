// Package docs holds the OpenAPI description served at /swagger. Regenerate
// with `swag init -g cmd/server/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {"post": {"tags": ["auth"], "summary": "Sign in with email and password"}},
        "/auth/refresh": {"post": {"tags": ["auth"], "summary": "Exchange a refresh token for a new token pair"}},
        "/auth/logout": {"post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Sign out and revoke the current tokens"}},
        "/auth/me": {"get": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Current session"}},
        "/auth/forgot-password": {"post": {"tags": ["auth"], "summary": "Request a password reset email"}},
        "/auth/reset-password": {"post": {"tags": ["auth"], "summary": "Set a new password with a reset token"}},
        "/dashboard": {"get": {"security": [{"BearerAuth": []}], "tags": ["client"], "summary": "Client dashboard"}},
        "/financial-overview": {"get": {"security": [{"BearerAuth": []}], "tags": ["client"], "summary": "Financial metrics of the signed-in client"}},
        "/invoices": {"get": {"security": [{"BearerAuth": []}], "tags": ["client"], "summary": "Invoices addressed to the signed-in client"}},
        "/profile": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["client"], "summary": "Profile of the signed-in client"},
            "put": {"security": [{"BearerAuth": []}], "tags": ["client"], "summary": "Create or update the profile of the signed-in client"}
        },
        "/services": {"get": {"security": [{"BearerAuth": []}], "tags": ["client"], "summary": "Services offered to the client"}},
        "/forms": {"get": {"security": [{"BearerAuth": []}], "tags": ["client"], "summary": "Forms available to the client"}},
        "/kyc-documents": {"get": {"security": [{"BearerAuth": []}], "tags": ["kyc"], "summary": "KYC checklist"}},
        "/kyc-documents/events": {"get": {"security": [{"BearerAuth": []}], "tags": ["kyc"], "summary": "Stream KYC status changes"}},
        "/kyc-documents/{slot}/uploads": {"post": {"security": [{"BearerAuth": []}], "tags": ["kyc"], "summary": "Stage a KYC document upload"}},
        "/kyc-documents/{slot}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["kyc"], "summary": "Stage removal of a KYC document"}},
        "/financial-documents": {"get": {"security": [{"BearerAuth": []}], "tags": ["financial"], "summary": "List financial documents"}},
        "/financial-documents/categories": {"get": {"security": [{"BearerAuth": []}], "tags": ["financial"], "summary": "Financial document categories and selectable years"}},
        "/financial-documents/export": {"get": {"security": [{"BearerAuth": []}], "produces": ["text/csv"], "tags": ["financial"], "summary": "Export financial documents as CSV"}},
        "/financial-documents/uploads": {"post": {"security": [{"BearerAuth": []}], "tags": ["financial"], "summary": "Stage a financial document upload"}},
        "/financial-documents/{id}": {"delete": {"security": [{"BearerAuth": []}], "tags": ["financial"], "summary": "Stage removal of a financial document"}},
        "/uploads/{ticket}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["uploads"], "summary": "Get the state of a staged or finished action"},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["uploads"], "summary": "Cancel a staged upload or delete"}
        },
        "/uploads/{ticket}/confirm": {"post": {"security": [{"BearerAuth": []}], "tags": ["uploads"], "summary": "Confirm a staged upload or delete"}},
        "/review/kyc-documents": {"get": {"security": [{"BearerAuth": []}], "tags": ["review"], "summary": "List KYC documents awaiting review"}},
        "/review/kyc-documents/{owner_id}/{slot}": {"put": {"security": [{"BearerAuth": []}], "tags": ["review"], "summary": "Approve or reject a KYC document"}}
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Client Portal API",
	Description:      "KYC and financial document portal for clients and reviewers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
