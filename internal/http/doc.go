// Package httpapp provides the HTTP server for Mingle.
//
//	@title						Mingle API
//	@version					1.0
//	@description				A small social network backend: accounts, posts, threaded comments, likes, and stories.
//	@description
//	@description				## Authentication
//	@description
//	@description				Register or log in to receive a JWT, then pass it as a bearer token:
//	@description				```bash
//	@description				curl -X POST /api/auth/register -d '{"firstname":"Ada","lastname":"L","email":"ada@example.com","password":"secret"}'
//	@description				curl /api/posts -H "Authorization: Bearer TOKEN"
//	@description				```
//	@description				Tokens expire after 7 days by default.
//	@description
//	@description				## Privacy
//	@description				Posts and stories are `public` unless created with `"privacy": "private"`.
//	@description				Private content is only returned to its author; to anyone else it does not exist.
//
//	@contact.name				Mingle
//	@license.name				MIT
//
//	@host						localhost:5000
//	@BasePath					/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token from /api/auth/register or /api/auth/login
//
//	@tag.name					Auth
//	@tag.description			Account registration and login. Both return a session token.
//
//	@tag.name					Users
//	@tag.description			Public profile lookup.
//
//	@tag.name					Posts
//	@tag.description			Create, browse, share, like, and delete posts. Reads respect post privacy.
//
//	@tag.name					Comments
//	@tag.description			Threaded discussion on posts. A comment with parentCommentId is a reply.
//
//	@tag.name					Stories
//	@tag.description			Ephemeral-style updates with optional image, filtered by the same privacy rules as posts.
package httpapp
