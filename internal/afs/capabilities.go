package afs

type SyncCapable interface {
	Sync() error
}
