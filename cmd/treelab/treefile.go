package main

import (
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/treelab/core/model"
	"github.com/YuminosukeSato/treelab/pkg/errors"
	"github.com/YuminosukeSato/treelab/sklearn/tree"
)

// saveTree writes t as gob when path ends in .gob and as JSON otherwise.
func saveTree(t *tree.Tree, path string) error {
	if filepath.Ext(path) == ".gob" {
		return model.SaveModel(t, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := t.WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

// loadTree reads a tree written by saveTree.
func loadTree(path string) (*tree.Tree, error) {
	if filepath.Ext(path) == ".gob" {
		t := &tree.Tree{}
		if err := model.LoadModel(t, path); err != nil {
			return nil, err
		}
		if err := t.Check(); err != nil {
			return nil, err
		}
		return t, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return tree.ReadJSON(f)
}
