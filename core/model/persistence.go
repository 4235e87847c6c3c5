package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/YuminosukeSato/treelab/pkg/errors"
)

// SaveModel はモデルをgob形式でファイルに保存する
//
// 使用例:
//
//	tr, _ := tree.Build(ds, tree.DefaultBuildConfig())
//	err := model.SaveModel(tr, "model.gob")
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer file.Close()

	return SaveModelToWriter(model, file)
}

// LoadModel はgob形式のファイルからモデルを読み込む
//
//	var tr tree.Tree
//	err := model.LoadModel(&tr, "model.gob")
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	return LoadModelFromReader(model, file)
}

// SaveModelToWriter はモデルをio.Writerに保存する
func SaveModelToWriter(model interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(model); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader はio.Readerからモデルを読み込む
func LoadModelFromReader(model interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(model); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}
