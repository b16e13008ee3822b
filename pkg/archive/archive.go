// Package archive turns local directories and archives into tar.zst
// artifacts for privileged deployment, and builds the remote command
// that unpacks them.
package archive

import (
	"archive/tar"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"

	"github.com/sudopush/sudopush/pkg/log"
)

// FileFormat represents the format of a deployment source file
type FileFormat string

const (
	FileFormatTarZst FileFormat = "tar.zst" // already normalized
	FileFormatTarGz  FileFormat = "tar.gz"  // .tar.gz files
	FileFormatTgz    FileFormat = "tgz"     // .tgz files
	FileFormatTarBz2 FileFormat = "tar.bz2" // .tar.bz2 files
	FileFormatTarXz  FileFormat = "tar.xz"  // .tar.xz files
	FileFormatTar    FileFormat = "tar"     // .tar files
	FileFormatBinary FileFormat = "binary"  // Plain files, wrapped into a tar
)

// DetectFormat classifies a file name by its suffix. Anything that is
// not a recognized archive counts as a plain binary.
func DetectFormat(filename string) FileFormat {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".tar.zst"):
		return FileFormatTarZst
	case strings.HasSuffix(name, ".tar.gz"):
		return FileFormatTarGz
	case strings.HasSuffix(name, ".tgz"):
		return FileFormatTgz
	case strings.HasSuffix(name, ".tar.bz2"):
		return FileFormatTarBz2
	case strings.HasSuffix(name, ".tar.xz"):
		return FileFormatTarXz
	case strings.HasSuffix(name, ".tar"):
		return FileFormatTar
	default:
		return FileFormatBinary
	}
}

// ExtractCommand returns the privileged remote command that unpacks a
// staged tar.zst archive into destDir. Requires GNU tar with zstd
// support on the target.
func ExtractCommand(remoteArchive, destDir string) string {
	return fmt.Sprintf("sudo tar --zstd -xf %s -C %s", remoteArchive, destDir)
}

// Compressor handles compression and decompression of deployment
// artifacts
type Compressor struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewCompressor creates a new compressor instance
func NewCompressor() (*Compressor, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &Compressor{
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Close closes the compressor and releases resources
func (c *Compressor) Close() {
	if c.encoder != nil {
		c.encoder.Close()
	}
	if c.decoder != nil {
		c.decoder.Close()
	}
}

// EnsureTarZst makes sure srcPath is available as a tar.zst artifact,
// producing it under workDir when conversion is needed. Directories are
// compressed, foreign archive formats are re-encoded, plain files are
// wrapped, and an existing .tar.zst passes through untouched.
func (c *Compressor) EnsureTarZst(srcPath, workDir string) (string, error) {
	info, err := os.Stat(srcPath)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", srcPath, err)
	}

	if info.IsDir() {
		destPath := filepath.Join(workDir, filepath.Base(srcPath)+".tar.zst")
		if err := c.CompressDirectory(srcPath, destPath); err != nil {
			return "", err
		}
		return destPath, nil
	}

	format := DetectFormat(srcPath)
	if format == FileFormatTarZst {
		return srcPath, nil
	}

	base := strings.TrimSuffix(filepath.Base(srcPath), "."+string(format))
	destPath := filepath.Join(workDir, base+".tar.zst")
	if err := c.Normalize(srcPath, destPath, format); err != nil {
		return "", err
	}
	return destPath, nil
}

// CompressDirectory compresses the contents of a directory to a tar.zst
// archive
func (c *Compressor) CompressDirectory(srcDir, destPath string) error {
	log.Infof("Compressing directory %s to %s", srcDir, destPath)

	destDir := filepath.Dir(destPath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	destFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	zstdWriter := c.encoder
	zstdWriter.Reset(destFile)
	defer zstdWriter.Close()

	tarWriter := tar.NewWriter(zstdWriter)
	defer tarWriter.Close()

	err = filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}

		// Skip the root directory itself
		if relPath == "." {
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return fmt.Errorf("failed to create tar header: %w", err)
		}
		header.Name = filepath.ToSlash(relPath)

		if err := tarWriter.WriteHeader(header); err != nil {
			return fmt.Errorf("failed to write tar header: %w", err)
		}

		if info.Mode().IsRegular() {
			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open file %s: %w", path, err)
			}
			defer file.Close()

			if _, err := io.Copy(tarWriter, file); err != nil {
				return fmt.Errorf("failed to write file to tar: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to compress directory: %w", err)
	}

	return nil
}

// Decompress extracts a tar.zst archive into a destination directory
func (c *Compressor) Decompress(srcPath, destDir string) error {
	log.Infof("Decompressing %s to %s", srcPath, destDir)

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	zstdReader := c.decoder
	if err := zstdReader.Reset(srcFile); err != nil {
		return fmt.Errorf("failed to reset zstd decoder: %w", err)
	}

	tarReader := tar.NewReader(zstdReader)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}

		// Sanitize the file path to prevent directory traversal
		destPath := filepath.Join(destDir, header.Name)
		if !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("invalid file path: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(destPath, os.FileMode(header.Mode)); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", destPath, err)
			}
		case tar.TypeReg:
			destFile, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return fmt.Errorf("failed to create file %s: %w", destPath, err)
			}

			if _, err := io.Copy(destFile, tarReader); err != nil {
				destFile.Close()
				return fmt.Errorf("failed to write file %s: %w", destPath, err)
			}
			destFile.Close()
		}
	}

	return nil
}

// Normalize re-encodes an archive or plain file to tar.zst format
func (c *Compressor) Normalize(srcPath, destPath string, format FileFormat) error {
	log.Infof("Normalizing %s (%s) to %s", srcPath, format, destPath)

	destDir := filepath.Dir(destPath)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	switch format {
	case FileFormatTar:
		// A .tar only needs the zstd layer
		return c.compressTar(srcPath, destPath)

	case FileFormatTarGz, FileFormatTgz:
		return c.recompress(srcPath, destPath, "gzip")

	case FileFormatTarBz2:
		return c.recompress(srcPath, destPath, "bzip2")

	case FileFormatTarXz:
		return c.recompress(srcPath, destPath, "xz")

	case FileFormatBinary:
		// Wrap the plain file into a single-entry tar
		return c.wrapBinary(srcPath, destPath)

	default:
		return fmt.Errorf("unsupported file format: %s", format)
	}
}

// compressTar compresses a .tar file directly with zstd
func (c *Compressor) compressTar(srcPath, destPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source tar file: %w", err)
	}
	defer srcFile.Close()

	destFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	zstdWriter := c.encoder
	zstdWriter.Reset(destFile)
	defer zstdWriter.Close()

	if _, err := io.Copy(zstdWriter, srcFile); err != nil {
		return fmt.Errorf("failed to compress tar file: %w", err)
	}

	return nil
}

// recompress strips a foreign compression layer off a tar archive and
// applies zstd instead
func (c *Compressor) recompress(srcPath, destPath, compressionType string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	var reader io.Reader
	switch compressionType {
	case "gzip":
		gzipReader, err := gzip.NewReader(srcFile)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzipReader.Close()
		reader = gzipReader

	case "bzip2":
		reader = bzip2.NewReader(srcFile)

	case "xz":
		xzReader, err := xz.NewReader(srcFile)
		if err != nil {
			return fmt.Errorf("failed to create xz reader: %w", err)
		}
		reader = xzReader
	default:
		return fmt.Errorf("unsupported compression type: %s", compressionType)
	}

	destFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	zstdWriter := c.encoder
	zstdWriter.Reset(destFile)
	defer zstdWriter.Close()

	if _, err := io.Copy(zstdWriter, reader); err != nil {
		return fmt.Errorf("failed to recompress with zstd: %w", err)
	}

	return nil
}

// wrapBinary creates a single-entry tar.zst archive from a plain file
func (c *Compressor) wrapBinary(srcPath, destPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to get source file info: %w", err)
	}

	destFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	zstdWriter := c.encoder
	zstdWriter.Reset(destFile)
	defer zstdWriter.Close()

	tarWriter := tar.NewWriter(zstdWriter)
	defer tarWriter.Close()

	header := &tar.Header{
		Name: filepath.Base(srcPath),
		Mode: int64(srcInfo.Mode()),
		Size: srcInfo.Size(),
	}

	if err := tarWriter.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header: %w", err)
	}

	if _, err := io.Copy(tarWriter, srcFile); err != nil {
		return fmt.Errorf("failed to write file to tar: %w", err)
	}

	return nil
}
