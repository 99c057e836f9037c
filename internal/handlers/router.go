package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/seusdados/crm-service/internal/services"
	"github.com/seusdados/crm-service/internal/utils"
)

type HandlerManager struct {
	questionnaireHandler *QuestionnaireHandler
	responseHandler      *ResponseHandler
	scoringHandler       *ScoringHandler
	templateHandler      *TemplateHandler
	documentHandler      *DocumentHandler
	clientHandler        *ClientHandler

	pinger   Pinger
	verifier TokenVerifier
	logger   utils.Logger
}

// NewHandlerManager builds every handler. A nil verifier disables authentication.
func NewHandlerManager(
	serviceManager services.ServiceManager,
	verifier TokenVerifier,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		questionnaireHandler: NewQuestionnaireHandler(serviceManager.Questionnaire(), serviceManager.Response(), serviceManager.ImportExport(), logger),
		responseHandler:      NewResponseHandler(serviceManager.Response(), logger),
		scoringHandler:       NewScoringHandler(serviceManager.Response(), logger),
		templateHandler:      NewTemplateHandler(serviceManager.Document(), logger),
		documentHandler:      NewDocumentHandler(serviceManager.Document(), logger),
		clientHandler:        NewClientHandler(serviceManager.Document(), logger),
		pinger:               serviceManager,
		verifier:             verifier,
		logger:               logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.Use(utils.RequestLogger(hm.logger))

	router.GET("/health", HealthCheck)
	router.GET("/ready", ReadinessCheck(hm.pinger, hm.logger))

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware(hm.verifier, hm.logger))
	{
		// Questionnaire routes
		questionnaires := v1.Group("/questionnaires")
		{
			questionnaires.POST("", hm.questionnaireHandler.CreateQuestionnaire)
			questionnaires.GET("", hm.questionnaireHandler.ListQuestionnaires)
			questionnaires.POST("/import", hm.questionnaireHandler.ImportQuestionnaire)
			questionnaires.GET("/:id", hm.questionnaireHandler.GetQuestionnaire)
			questionnaires.PUT("/:id", hm.questionnaireHandler.UpdateQuestionnaire)
			questionnaires.POST("/:id/archive", hm.questionnaireHandler.ArchiveQuestionnaire)
			questionnaires.GET("/:id/stats", hm.questionnaireHandler.GetQuestionnaireStats)
			questionnaires.GET("/:id/responses/export", hm.questionnaireHandler.ExportResponses)
		}

		// Response routes
		responses := v1.Group("/responses")
		{
			responses.POST("", hm.responseHandler.SubmitResponse)
			responses.GET("", hm.responseHandler.ListResponses)
			responses.GET("/:id", hm.responseHandler.GetResponse)
			responses.PUT("/:id", hm.responseHandler.UpdateResponse)
			responses.POST("/:id/recalculate", hm.responseHandler.RecalculateResponse)
			responses.POST("/:id/convert-lead", hm.responseHandler.ConvertLead)
		}

		v1.POST("/scoring/calculate", hm.scoringHandler.CalculateScore)

		// Template routes
		templates := v1.Group("/templates")
		{
			templates.POST("", hm.templateHandler.CreateTemplate)
			templates.GET("", hm.templateHandler.ListTemplates)
			templates.POST("/resolve", hm.templateHandler.ResolveTemplate)
			templates.GET("/:id", hm.templateHandler.GetTemplate)
			templates.PUT("/:id", hm.templateHandler.UpdateTemplate)
			templates.POST("/:id/detect-fields", hm.templateHandler.DetectFields)
		}

		// Document routes
		documents := v1.Group("/documents")
		{
			documents.POST("", hm.documentHandler.GenerateDocument)
			documents.POST("/preview", hm.documentHandler.PreviewDocument)
			documents.GET("/:id", hm.documentHandler.GetDocument)
			documents.GET("/:id/pdf", hm.documentHandler.DownloadPDF)
		}

		// Client routes
		clients := v1.Group("/clients")
		{
			clients.GET("", hm.clientHandler.ListClients)
			clients.GET("/:id/documents", hm.clientHandler.ListClientDocuments)
		}
	}
}
