package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/aaeducates/backend/docs" // registers the generated OpenAPI document
)

// SetupSwagger serves the API docs UI. Bearer tokens entered in the UI
// survive page reloads.
func SetupSwagger(router *gin.Engine) {
	handler := ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.DocExpansion("none"),
		ginSwagger.PersistAuthorization(true),
	)

	router.GET("/swagger/*any", handler)
}
