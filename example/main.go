package main

import (
	"fmt"

	bitcask "github.com/go-bitcask/core"
)

func main() {
	db, err := bitcask.Open("test.db", bitcask.WithCacheSize(128))
	if err != nil {
		panic(err)
	}
	defer db.Close()

	if err = db.Put("key1", []byte("value1")); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("put key1 ok")

	value, err := db.Get("key1")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("get key1:", string(value))

	batch := map[string][]byte{
		"key2": []byte("value2"),
		"key3": []byte("value3"),
	}
	if err = db.BatchPut(batch); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("batch put ok")

	keys := []string{"key2", "key3"}
	values, err := db.BatchGet(keys)
	if err != nil {
		fmt.Println(err)
		return
	}
	for k, v := range values {
		fmt.Printf("batch get key:%s, val:%s\n", k, string(v))
	}

	if err = db.Delete("key1"); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("deleted key1")

	if err = db.Snapshot(); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("wrote hint file")

	it := db.Iterator()
	for it.Next() {
		key := it.Key()
		value, err := it.Value()
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Printf("iterate key:%s, val:%s\n", key, string(value))
	}
}
