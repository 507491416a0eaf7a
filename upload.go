package weave

import (
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/weaveframe/weave/internal/concat"
	"github.com/weaveframe/weave/internal/qos"
)

// FileInfo carries an uploaded file's metadata plus its content, read
// fully into memory once the multipart part is parsed.
type FileInfo struct {
	Filename string
	Size int64
	ContentType string
	Bytes []byte
}

// UploadedFile is the handle a handler gets back for each file found in
// a multipart/form-data body.
type UploadedFile struct {
	Info FileInfo
}

func (uf *UploadedFile) FileName() string { return uf.Info.Filename }
func (uf *UploadedFile) Size() int64 { return uf.Info.Size }
func (uf *UploadedFile) ContentType() string { return uf.Info.ContentType }
func (uf *UploadedFile) Bytes() []byte { return uf.Info.Bytes }

// Save stores the uploaded file in destination, using nameFile[0] as the
// filename if given, otherwise the name the client sent.
func (uf *UploadedFile) Save(destination string, nameFile ...string) error {
	var fullPath string

	if len(nameFile) > 0 {
		fullPath = filepath.Join(destination, nameFile[0])
	} else {
		if len(uf.Info.Bytes) == 0 {
			return errors.New("no file available to save")
		}
		fullPath = concat.ConcatStr(destination, "/", uf.Info.Filename)
	}

	if err := os.MkdirAll(destination, os.ModePerm); err != nil {
		return errors.New("failed to create destination directory")
	}

	if qos.FileExist(fullPath) {
		return errors.New("destination file already exists: " + fullPath)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return errors.New("failed to create file on disk")
	}
	defer dst.Close()

	if _, err := dst.Write(uf.Info.Bytes); err != nil {
		return errors.New("failed to save file")
	}
	return nil
}

// SaveAll saves every file in files to destination.
func SaveAll(files []*UploadedFile, destination string) error {
	for _, file := range files {
		if err := file.Save(destination); err != nil {
			return err
		}
	}
	return nil
}

// MultipartFiles parses req's body as multipart/form-data and returns
// every file part found, bounded by maxSize bytes per file. Unlike
// net/http's ParseMultipartForm, this reads from req.Body() (already
// memoized and already bounded by the dispatcher's own body-size limit),
// so handlers that called req.Body() or req.JSON() earlier still see a
// consistent view.
func MultipartFiles(req *Request, maxSize int64) ([]*UploadedFile, error) {
	contentType := req.Header("Content-Type")
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return nil, ParamFailure("Content-Type", "not multipart/form-data")
	}
	boundary, ok := params["boundary"]
	if !ok {
		return nil, ParamFailure("Content-Type", "missing multipart boundary")
	}

	body, err := req.Body()
	if err != nil {
		return nil, err
	}

	mr := multipart.NewReader(strings.NewReader(string(body)), boundary)
	var files []*UploadedFile
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		if part.FileName() == "" {
			continue
		}
		var limited []byte
		if maxSize > 0 {
			limited = make([]byte, 0, maxSize)
		}
		buf := make([]byte, 32*1024)
		var total int64
		for {
			n, rerr := part.Read(buf)
			if n > 0 {
				total += int64(n)
				if maxSize > 0 && total > maxSize {
					return nil, &bodyTooLarge{limit: maxSize}
				}
				limited = append(limited, buf[:n]...)
			}
			if rerr != nil {
				break
			}
		}
		contentType := part.Header.Get("Content-Type")
		if contentType == "" {
			contentType = http.DetectContentType(limited)
		}
		files = append(files, &UploadedFile{Info: FileInfo{
			Filename: part.FileName(),
			Size: total,
			ContentType: contentType,
			Bytes: limited,
		}})
	}
	return files, nil
}

// parseSize converts a human-readable size string ("10MB", "500KB")
// into bytes.
func parseSize(sizeStr string) (int64, error) {
	sizeStr = strings.TrimSpace(strings.ToLower(sizeStr))

	re := regexp.MustCompile(`^(\d+)(b|kb|mb|gb|tb)$`)
	matches := re.FindStringSubmatch(sizeStr)
	if len(matches) != 3 {
		return 0, errors.New("invalid size format")
	}

	value, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, errors.New("invalid size number")
	}

	unitMultipliers := map[string]int64{
		"b": 1,
		"kb": 1024,
		"mb": 1024 * 1024,
		"gb": 1024 * 1024 * 1024,
		"tb": 1024 * 1024 * 1024 * 1024,
	}
	multiplier, exists := unitMultipliers[matches[2]]
	if !exists {
		return 0, errors.New("unknown size unit")
	}
	return value * multiplier, nil
}
