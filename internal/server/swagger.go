package server

//go:generate swag init -g internal/server/server.go -o internal/server/docs --outputTypes go

// @title edAItorial API
// @version 0.1
// @description Content quality analysis and publish gating for editorial content.
// @contact.name edAItorial Maintainers
// @contact.url https://github.com/escuriola/edaitorial
// @BasePath /
