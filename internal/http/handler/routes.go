package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"attachapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers
// stay thin; everything interesting lives in the services.
func RegisterRoutes(app *fiber.App, db *sql.DB, fileSvc service.FileService, attachSvc service.AttachmentService, maxUploadBytes int64) {
	// OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// File lifecycle
	app.Post("/files", UploadFile(fileSvc, maxUploadBytes))
	app.Get("/files", ListFiles(fileSvc))
	app.Get("/files/by-path", GetFileByPath(fileSvc))
	app.Get("/files/:ref", GetFile(fileSvc))
	app.Get("/files/:ref/content", DownloadFile(fileSvc))
	app.Get("/files/:ref/url", FileURL(fileSvc))
	app.Patch("/files/:ref", UpdateFileMeta(fileSvc))
	app.Post("/files/:ref/refresh", RefreshFileTTL(fileSvc))
	app.Delete("/files/:ref", DeleteFile(fileSvc))

	// Attachment graph
	app.Get("/files/:ref/attachments", FileEntities(attachSvc))
	app.Post("/entities/:type/:id/attachments", AttachFile(attachSvc, maxUploadBytes))
	app.Put("/entities/:type/:id/attachments", LinkFile(attachSvc))
	app.Get("/entities/:type/:id/attachments", ListEntityAttachments(attachSvc))
	app.Delete("/entities/:type/:id/attachments/:ref", UnlinkAttachment(attachSvc))
	app.Delete("/entities/:type/:id/attachments", UnlinkAllAttachments(attachSvc))

	// Maintenance
	app.Delete("/maintenance/expired", PurgeExpired(fileSvc))
}
