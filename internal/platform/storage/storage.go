// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storage owns the on-disk asset tree under MEDIA_ROOT.

Layout:

	<root>/<manga-slug>/cover.<ext>
	<root>/<manga-slug>/<chapter-slug>/001.<ext>, 002.<ext>, ...

Paths handed back to callers are relative to the root and use forward slashes;
they are what the catalog stores. [Disk.URL] turns one into a public URL.
*/
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Aischii/mangaWebsite/pkg/slug"
)

// ErrExists is returned when a rename or create would overwrite a folder.
var ErrExists = errors.New("storage: target already exists")

// ErrInvalidName is returned for slugs that are not safe directory names.
var ErrInvalidName = errors.New("storage: invalid directory name")

// ErrUnsupportedType is returned for files that are not a recognised image type.
var ErrUnsupportedType = errors.New("storage: unsupported image type")

// imageExtensions lists the page and cover formats the reader can display.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// Source is one uploaded file, opened lazily so large batches stream from disk.
type Source struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// IsImage reports whether name carries a supported image extension.
func IsImage(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// Disk manages the asset tree rooted at one directory.
type Disk struct {
	root      string
	urlPrefix string
}

// NewDisk creates the root directory if needed and returns a Disk over it.
func NewDisk(root, urlPrefix string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create media root %s: %w", root, err)
	}
	return &Disk{root: root, urlPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Root returns the absolute or configured root directory.
func (disk *Disk) Root() string { return disk.root }

// URL maps a stored relative path to its public URL. Empty stays empty.
func (disk *Disk) URL(relative string) string {
	if relative == "" {
		return ""
	}
	return disk.urlPrefix + "/" + strings.TrimLeft(relative, "/")
}

// Abs resolves a stored relative path to a filesystem path.
func (disk *Disk) Abs(relative string) string {
	return filepath.Join(disk.root, filepath.FromSlash(relative))
}

// # Writes

/*
WriteCover stores a new cover image for a manga.

Existing files are never touched: the first free name among cover.<ext>,
cover-2.<ext>, cover-3.<ext> ... is used. The caller removes the previous
cover once the catalog points at the new one.

Returns:
  - string: the relative path of the new cover
  - error: ErrInvalidName, ErrUnsupportedType, ErrExists, or an I/O failure
*/
func (disk *Disk) WriteCover(mangaSlug string, source Source) (string, error) {
	if !slug.Valid(mangaSlug) {
		return "", ErrInvalidName
	}
	extension := strings.ToLower(filepath.Ext(source.Name))
	if !imageExtensions[extension] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, source.Name)
	}

	directory := filepath.Join(disk.root, mangaSlug)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return "", fmt.Errorf("storage: failed to create manga folder: %w", err)
	}

	for version := 1; version <= maxCoverVersions; version++ {
		name := coverPrefix + extension
		if version > 1 {
			name = fmt.Sprintf("%s-%d%s", coverPrefix, version, extension)
		}

		target := filepath.Join(directory, name)
		file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("storage: failed to create %s: %w", target, err)
		}
		if err := fill(file, source); err != nil {
			return "", err
		}
		return path.Join(mangaSlug, name), nil
	}
	return "", ErrExists
}

const (
	coverPrefix      = "cover"
	maxCoverVersions = 100
)

// isCover matches cover.<ext> and cover-<n>.<ext>.
func isCover(name string) bool {
	return IsImage(name) && (strings.HasPrefix(name, coverPrefix+".") || strings.HasPrefix(name, coverPrefix+"-"))
}

// WriteAvatar stores a user's avatar under the reserved "_avatars" folder.
func (disk *Disk) WriteAvatar(userID int64, source Source) (string, error) {
	extension := strings.ToLower(filepath.Ext(source.Name))
	if !imageExtensions[extension] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, source.Name)
	}

	directory := filepath.Join(disk.root, avatarDir)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return "", fmt.Errorf("storage: failed to create avatar folder: %w", err)
	}

	name := fmt.Sprintf("%d%s", userID, extension)
	if err := writeFile(filepath.Join(directory, name), source); err != nil {
		return "", err
	}
	return path.Join(avatarDir, name), nil
}

// avatarDir holds user avatars; the catalog refuses it as a manga slug.
const avatarDir = "_avatars"

// ReservedSlug reports whether a slug is used by the storage layer itself.
func ReservedSlug(s string) bool {
	return s == avatarDir
}

/*
WritePages stores an ordered batch of page images for a new chapter.

The chapter folder must not exist yet. Pages are renamed 001, 002, ... in the
given order so the directory listing matches reading order. On any failure
the partially written folder is removed before returning.

Returns:
  - []string: relative page paths in reading order
  - error: ErrExists, ErrUnsupportedType, or an I/O failure
*/
func (disk *Disk) WritePages(mangaSlug, chapterSlug string, pages []Source) ([]string, error) {
	if !slug.Valid(mangaSlug) || !slug.Valid(chapterSlug) {
		return nil, ErrInvalidName
	}
	for _, page := range pages {
		if !IsImage(page.Name) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, page.Name)
		}
	}

	if err := os.MkdirAll(filepath.Join(disk.root, mangaSlug), 0o755); err != nil {
		return nil, fmt.Errorf("storage: failed to create manga folder: %w", err)
	}

	// Mkdir claims the folder atomically; concurrent uploads of one title get ErrExists
	directory := filepath.Join(disk.root, mangaSlug, chapterSlug)
	if err := os.Mkdir(directory, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, ErrExists
		}
		return nil, fmt.Errorf("storage: failed to create chapter folder: %w", err)
	}

	stored := make([]string, 0, len(pages))
	for index, page := range pages {
		name := fmt.Sprintf("%03d%s", index+1, strings.ToLower(filepath.Ext(page.Name)))
		if err := writeFile(filepath.Join(directory, name), page); err != nil {
			_ = os.RemoveAll(directory)
			return nil, err
		}
		stored = append(stored, path.Join(mangaSlug, chapterSlug, name))
	}

	return stored, nil
}

func writeFile(target string, source Source) error {
	file, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("storage: failed to create %s: %w", target, err)
	}
	return fill(file, source)
}

// fill copies source into file and closes it. On failure the file is removed.
func fill(file *os.File, source Source) error {
	target := file.Name()

	reader, err := source.Open()
	if err != nil {
		_ = file.Close()
		_ = os.Remove(target)
		return fmt.Errorf("storage: failed to open upload %s: %w", source.Name, err)
	}
	defer reader.Close()

	if _, err := io.Copy(file, reader); err != nil {
		_ = file.Close()
		_ = os.Remove(target)
		return fmt.Errorf("storage: failed to write %s: %w", target, err)
	}
	return file.Close()
}

// # Renames

// RenameManga moves a manga folder. A missing source folder is not an error.
func (disk *Disk) RenameManga(oldSlug, newSlug string) error {
	if !slug.Valid(oldSlug) || !slug.Valid(newSlug) {
		return ErrInvalidName
	}
	return disk.rename(filepath.Join(disk.root, oldSlug), filepath.Join(disk.root, newSlug))
}

// RenameChapter moves a chapter folder inside its manga folder.
func (disk *Disk) RenameChapter(mangaSlug, oldSlug, newSlug string) error {
	if !slug.Valid(mangaSlug) || !slug.Valid(oldSlug) || !slug.Valid(newSlug) {
		return ErrInvalidName
	}
	base := filepath.Join(disk.root, mangaSlug)
	return disk.rename(filepath.Join(base, oldSlug), filepath.Join(base, newSlug))
}

func (disk *Disk) rename(from, to string) error {
	if from == to {
		return nil
	}
	if _, err := os.Stat(to); err == nil {
		return ErrExists
	}
	if err := os.Rename(from, to); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("storage: failed to rename %s: %w", from, err)
	}
	return nil
}

// # Removal

// RemoveManga deletes a manga folder and everything under it.
func (disk *Disk) RemoveManga(mangaSlug string) error {
	if !slug.Valid(mangaSlug) {
		return ErrInvalidName
	}
	return os.RemoveAll(filepath.Join(disk.root, mangaSlug))
}

// RemoveFile deletes one stored file. A missing file is not an error.
func (disk *Disk) RemoveFile(relative string) error {
	if relative == "" {
		return nil
	}
	if err := os.Remove(disk.Abs(relative)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: failed to remove %s: %w", relative, err)
	}
	return nil
}

// RemoveChapter deletes one chapter folder.
func (disk *Disk) RemoveChapter(mangaSlug, chapterSlug string) error {
	if !slug.Valid(mangaSlug) || !slug.Valid(chapterSlug) {
		return ErrInvalidName
	}
	return os.RemoveAll(filepath.Join(disk.root, mangaSlug, chapterSlug))
}

// # Scanning

// Folder is one manga directory found on disk.
type Folder struct {
	Slug     string
	Cover    string
	Chapters []ChapterFolder
}

// ChapterFolder is one chapter directory with its image files.
type ChapterFolder struct {
	Slug  string
	Pages []string
}

// Scan lists manga folders, their covers, chapters and page files.
// Page names are returned unsorted; callers choose the order.
func (disk *Disk) Scan() ([]Folder, error) {
	entries, err := os.ReadDir(disk.root)
	if err != nil {
		return nil, fmt.Errorf("storage: failed to read media root: %w", err)
	}

	var folders []Folder
	for _, entry := range entries {
		if !entry.IsDir() || ReservedSlug(entry.Name()) || !slug.Valid(entry.Name()) {
			continue
		}

		folder, err := disk.scanManga(entry.Name())
		if err != nil {
			return nil, err
		}
		folders = append(folders, folder)
	}
	return folders, nil
}

func (disk *Disk) scanManga(mangaSlug string) (Folder, error) {
	folder := Folder{Slug: mangaSlug}

	entries, err := os.ReadDir(filepath.Join(disk.root, mangaSlug))
	if err != nil {
		return folder, fmt.Errorf("storage: failed to read %s: %w", mangaSlug, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() {
			if isCover(name) && folder.Cover == "" {
				folder.Cover = path.Join(mangaSlug, name)
			}
			continue
		}
		if !slug.Valid(name) {
			continue
		}

		files, err := os.ReadDir(filepath.Join(disk.root, mangaSlug, name))
		if err != nil {
			return folder, fmt.Errorf("storage: failed to read %s/%s: %w", mangaSlug, name, err)
		}

		chapter := ChapterFolder{Slug: name}
		for _, file := range files {
			if !file.IsDir() && IsImage(file.Name()) {
				chapter.Pages = append(chapter.Pages, file.Name())
			}
		}
		folder.Chapters = append(folder.Chapters, chapter)
	}

	return folder, nil
}
