package tabular

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caobathien/Church/apperrors"
)

func TestParseCSVHeaderLookup(t *testing.T) {
	csv := "Họ và tên,Email, Vai trò \n" +
		"Nguyễn Văn An,an@test.local,huynh_truong\n" +
		",,\n" + // dòng trống bị bỏ
		"Trần Thị Bình,binh@test.local,\n"

	rows, err := Parse("huynhtruong.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, []string{"Họ và tên", "Email", " Vai trò "}, rows.Headers)
	require.Len(t, rows.Records, 2)

	// tra cột không phân biệt hoa thường và khoảng trắng thừa
	assert.Equal(t, "Nguyễn Văn An", rows.Records[0].Get("họ và tên"))
	assert.Equal(t, "huynh_truong", rows.Records[0].Get("Vai trò"))
	assert.Equal(t, "", rows.Records[1].Get("vai trò"))
	assert.Equal(t, "", rows.Records[0].Get("cột không tồn tại"))
}

func TestParseUnsupportedExtension(t *testing.T) {
	_, err := Parse("danhsach.pdf", strings.NewReader("x"))
	var ve *apperrors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	headers := []string{"Họ và tên", "Email"}
	data := [][]string{
		{"Nguyễn Văn An", "an@test.local"},
		{"Trần Thị Bình", "binh@test.local"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, "HuynhTruong", headers, data))

	rows, err := Parse("export.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, headers, rows.Headers)
	require.Len(t, rows.Records, 2)
	assert.Equal(t, "binh@test.local", rows.Records[1].Get("email"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []string{"a", "b"}, [][]string{{"1", "2"}}))
	assert.Equal(t, "a,b\n1,2\n", buf.String())
}

func TestJobStoreTakeRemoves(t *testing.T) {
	store := NewJobStore(time.Minute)
	job := store.Put("danhsach.xlsx", &Rows{Headers: []string{"a"}})
	require.NotEmpty(t, job.ID)

	got, ok := store.Take(job.ID)
	require.True(t, ok)
	assert.Equal(t, "danhsach.xlsx", got.Filename)

	// handle chỉ dùng được một lần
	_, ok = store.Take(job.ID)
	assert.False(t, ok)
}

func TestJobStoreExpiry(t *testing.T) {
	store := NewJobStore(-time.Second) // hết hạn ngay khi tạo
	job := store.Put("danhsach.csv", &Rows{})

	_, ok := store.Take(job.ID)
	assert.False(t, ok)

	_, ok = store.Take("id-khong-ton-tai")
	assert.False(t, ok)
}
