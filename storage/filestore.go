// Package storage lưu file tải lên (avatar, ảnh thông báo) dưới tên file
// sinh ngẫu nhiên. Hợp đồng: đưa bytes nhận tên file; xoá theo tên file,
// file không tồn tại cũng không lỗi.
package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/caobathien/Church/apperrors"
)

// Kích thước avatar chuẩn sau khi thu nhỏ.
const avatarSize = 200

type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &apperrors.StorageIO{Err: err}
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) Dir() string { return fs.dir }

func randomName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return uuid.NewString() + ext
}

// Save ghi nguyên bytes và trả về tên file mới.
func (fs *FileStore) Save(r io.Reader, originalName string) (string, error) {
	name := randomName(originalName)
	f, err := os.Create(filepath.Join(fs.dir, name))
	if err != nil {
		return "", &apperrors.StorageIO{Err: err}
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", &apperrors.StorageIO{Err: err}
	}
	return name, nil
}

// SaveAvatar thu nhỏ ảnh về tối đa 200x200 rồi lưu (giữ tỉ lệ).
func (fs *FileStore) SaveAvatar(r io.Reader, originalName string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", &apperrors.StorageIO{Err: err}
	}
	img, err := imaging.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return "", apperrors.NewValidation("avatar", "File ảnh không hợp lệ.")
	}
	img = imaging.Fit(img, avatarSize, avatarSize, imaging.Lanczos)

	name := randomName(originalName)
	path := filepath.Join(fs.dir, name)
	if err := imaging.Save(img, path); err != nil {
		// đuôi file lạ thì ép về jpg
		name = fmt.Sprintf("%s.jpg", strings.TrimSuffix(name, filepath.Ext(name)))
		path = filepath.Join(fs.dir, name)
		if err := imaging.Save(img, path); err != nil {
			return "", &apperrors.StorageIO{Err: err}
		}
	}
	return name, nil
}

// Delete xoá file theo tên; đã mất rồi thì coi như xong.
func (fs *FileStore) Delete(name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(fs.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return &apperrors.StorageIO{Err: err}
	}
	return nil
}
