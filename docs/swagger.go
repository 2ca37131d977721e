// Package docs provides Swagger documentation for the API.
package docs

// @title Ads Proposal Backend API
// @version 1.0
// @description Review, approval, execution and rollback of ad-campaign improvement proposals
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.one-green.io/support
// @contact.email support@one-green.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
