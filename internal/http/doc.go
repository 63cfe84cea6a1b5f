// Package httpapp provides the HTTP server for Feedwire.
//
//	@title						Feedwire API
//	@version					1.0
//	@description				A minimal social feed backend: accounts, bearer-token auth and
//	@description				image-carrying posts.
//	@description
//	@description				## Authentication Flow
//	@description
//	@description				All feed operations require a bearer token. Create an account once,
//	@description				then exchange the credentials for a token:
//	@description
//	@description				```bash
//	@description				curl -X PUT /auth/signup -d '{"name":"ada","email":"ada@example.com","password":"secret1"}'
//	@description				curl -X POST /auth/signin -d '{"email":"ada@example.com","password":"secret1"}'
//	@description				# Returns: {"token": "TOKEN", "userId": 1}
//	@description				```
//	@description
//	@description				Include the token in all feed requests:
//	@description				```bash
//	@description				curl /feed/posts -H "Authorization: Bearer TOKEN"
//	@description				```
//
//	@contact.name				Feedwire
//	@license.name				MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token from /auth/signin endpoint
//
//	@tag.name					Auth
//	@tag.description			Account signup and credential-based signin.
//
//	@tag.name					Feed
//	@tag.description			Create, browse, edit and delete image posts. Pages are fixed at two posts.
package httpapp
