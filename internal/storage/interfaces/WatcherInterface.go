package interfaces

type WatcherInterface interface {
	Start() error
	Stop()
}
