package disk

import (
	log "github.com/sirupsen/logrus"

	"bufpool/src/config"
)

// OpenBufferPool opens cfg.DBFile and returns a pool of cfg.PoolSize frames
// managed by an LRUReplacer.
func OpenBufferPool(cfg *config.Config) (*BufferPoolManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ConfigureLogging(); err != nil {
		return nil, err
	}
	dm, err := NewDiskManager(cfg.DBFile)
	if err != nil {
		log.WithError(err).Errorf("Cannot open database file %s.", cfg.DBFile)
		return nil, err
	}
	log.WithField("pool_size", cfg.PoolSize).Infof("Opened buffer pool on %s.", cfg.DBFile)
	return NewBufferPoolManager(cfg.PoolSize, dm, NewLRUReplacer(cfg.PoolSize)), nil
}
