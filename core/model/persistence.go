package model

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ArtifactFileMode は保存したモデルファイルのパーミッション
const ArtifactFileMode os.FileMode = 0o644

// SaveModel はモデルをgobでファイルに保存する
//
// 一時ファイルに書き込んでからリネームするため、既存のファイルは
// 書き込みが完了した時点でのみ置き換えられる。
//
// 使用例:
//
//	err := model.SaveModel(pipe, "model.gob")
func SaveModel(m interface{}, filename string) (err error) {
	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filename)+".*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = SaveModelToWriter(m, tmp); err != nil {
		return err
	}
	// CreateTemp は0600で作るので、リネーム前に広げる
	if err = tmp.Chmod(ArtifactFileMode); err != nil {
		return fmt.Errorf("failed to chmod file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err = os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filename, err)
	}
	return nil
}

// LoadModel はファイルからモデルを読み込む
//
// ファイルが存在しない場合のエラーは os.ErrNotExist を含む。
//
// 使用例:
//
//	var pipe pipeline.Pipeline
//	err := model.LoadModel(&pipe, "model.gob")
func LoadModel(m interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return LoadModelFromReader(m, file)
}

// SaveModelToWriter はモデルをio.Writerに保存する
func SaveModelToWriter(m interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(m); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	return nil
}

// LoadModelFromReader はio.Readerからモデルを読み込む
func LoadModelFromReader(m interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(m); err != nil {
		return fmt.Errorf("failed to decode model: %w", err)
	}
	return nil
}
