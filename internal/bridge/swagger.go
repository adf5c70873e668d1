package bridge

//go:generate swag init -g internal/bridge/bridge.go -o docs/swagger

// @title BuzzChat client bridge
// @version 0.1
// @description Local surface through which a UI reads and follows notification and navigation state.
// @contact.name BuzzChat Maintainers
// @contact.url https://github.com/raysh454/buzzclient
// @BasePath /
