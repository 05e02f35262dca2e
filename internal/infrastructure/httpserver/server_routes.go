package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")

	registration := api.Group("/registration")
	registration.POST("/owners", s.requestOwnerActivation)
	registration.POST("/owners/activation", s.activateOwner)
	registration.POST("/public", s.registerPublicUser)
	registration.POST("/public/activation", s.activatePublicUser)

	api.POST("/activation", s.requestVerifyEmail)
	api.GET("/activation/:code", s.verifyEmail)

	api.POST("/reset_password", s.requestResetPassword)
	api.PUT("/reset_password/:code", s.resetPassword)

	api.POST("/owners", s.publishOwner)
}
