package store

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
	"go.uber.org/zap"
)

var instance *BadgerStore
var once sync.Once

type BadgerStore struct {
	store *badgerhold.Store
}

func (b *BadgerStore) Upsert(key interface{}, value interface{}) error {
	return b.store.Upsert(key, value)
}

func (b *BadgerStore) Get(key interface{}, value interface{}) error {
	return b.store.Get(key, value)
}

func (b *BadgerStore) Find(result interface{}, query *badgerhold.Query) error {
	return b.store.Find(result, query)
}

func (b *BadgerStore) DeleteMatching(value interface{}, query *badgerhold.Query) error {
	return b.store.DeleteMatching(value, query)
}

func GetBadgerStore(dataDir string) *BadgerStore {
	once.Do(func() {
		if dataDir == "" {
			p, err := os.Getwd()
			if err != nil {
				panic(err)
			}
			dataDir = filepath.Join(p, "etc", "data")
		}
		options := badgerhold.DefaultOptions
		options.Options = badger.DefaultOptions(dataDir).WithLogger(nil)
		store, err := badgerhold.Open(options)
		if err != nil {
			panic(err)
		}
		instance = &BadgerStore{store: store}
	})
	return instance
}

func CloseBadgerStore() {
	if instance != nil {
		zap.S().Info("正在关闭 Badger 存储...")
		err := instance.store.Close()
		if err != nil {
			zap.S().Errorf("关闭 Badger 存储时发生错误: %v", err)
		} else {
			zap.S().Info("Badger 存储已成功关闭")
		}
		// 重置实例，避免重复关闭
		instance = nil
	}
}
