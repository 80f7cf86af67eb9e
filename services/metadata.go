package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tracktidy/types"

	id3v2 "github.com/bogem/id3v2/v2"
	"github.com/dhowden/tag"
	"github.com/go-flac/flacvorbis"
	flac "github.com/go-flac/go-flac"
)

// TagEditor interface defines methods for reading and rewriting tag sets
type TagEditor interface {
	ReadTags(path string) (*types.TagSet, error)
	WriteTags(path string, updates types.TagUpdates) error
}

// tagEditor implements the TagEditor interface
type tagEditor struct{}

// NewTagEditor creates a new tag editor
func NewTagEditor() TagEditor {
	return &tagEditor{}
}

// ReadTags reads the current tag set from an audio file.
func (e *tagEditor) ReadTags(path string) (*types.TagSet, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrNotAnAudioFile, err)
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnAudioFile, err)
	}

	return &types.TagSet{
		Title:  meta.Title(),
		Artist: meta.Artist(),
		Album:  meta.Album(),
		Genre:  meta.Genre(),
	}, nil
}

// WriteTags rewrites the file's tag container in place. Empty update fields
// keep their existing values.
func (e *tagEditor) WriteTags(path string, updates types.TagUpdates) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return err
	}

	if updates.IsEmpty() {
		return nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return writeMP3Tags(path, updates)
	case ".flac":
		return writeFLACTags(path, updates)
	default:
		return fmt.Errorf("%w: tag writing supports MP3 and FLAC", ErrNotAnAudioFile)
	}
}

// writeMP3Tags updates the ID3v2 tag block of an MP3 file.
func writeMP3Tags(path string, updates types.TagUpdates) error {
	mp3Tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAnAudioFile, err)
	}
	defer mp3Tag.Close()

	mp3Tag.SetDefaultEncoding(id3v2.EncodingUTF8)

	if updates.Title != "" {
		mp3Tag.SetTitle(updates.Title)
	}
	if updates.Artist != "" {
		mp3Tag.SetArtist(updates.Artist)
	}
	if updates.Album != "" {
		mp3Tag.SetAlbum(updates.Album)
	}
	if updates.Genre != "" {
		mp3Tag.SetGenre(updates.Genre)
	}

	if err := mp3Tag.Save(); err != nil {
		return fmt.Errorf("failed to save mp3 tags: %w", err)
	}

	return nil
}

// writeFLACTags updates the vorbis comment block of a FLAC file.
func writeFLACTags(path string, updates types.TagUpdates) error {
	f, err := flac.ParseFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAnAudioFile, err)
	}

	cmt, cmtIdx := findVorbisComment(f)

	if updates.Title != "" {
		setVorbisField(cmt, flacvorbis.FIELD_TITLE, updates.Title)
	}
	if updates.Artist != "" {
		setVorbisField(cmt, flacvorbis.FIELD_ARTIST, updates.Artist)
	}
	if updates.Album != "" {
		setVorbisField(cmt, flacvorbis.FIELD_ALBUM, updates.Album)
	}
	if updates.Genre != "" {
		setVorbisField(cmt, "GENRE", updates.Genre)
	}

	block := cmt.Marshal()
	if cmtIdx < 0 {
		f.Meta = append(f.Meta, &block)
	} else {
		f.Meta[cmtIdx] = &block
	}

	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to save flac tags: %w", err)
	}

	return nil
}

// findVorbisComment returns the file's vorbis comment block, or a fresh one
// (index -1) when the file has none.
func findVorbisComment(f *flac.File) (*flacvorbis.MetaDataBlockVorbisComment, int) {
	for idx, block := range f.Meta {
		if block.Type == flac.VorbisComment {
			if cmt, err := flacvorbis.ParseFromMetaDataBlock(*block); err == nil {
				return cmt, idx
			}
			// Unparseable comment block gets replaced wholesale
			return flacvorbis.New(), idx
		}
	}
	return flacvorbis.New(), -1
}

// setVorbisField replaces every existing comment for the field before
// adding the new value.
func setVorbisField(cmt *flacvorbis.MetaDataBlockVorbisComment, field, value string) {
	prefix := strings.ToUpper(field) + "="
	kept := cmt.Comments[:0]
	for _, comment := range cmt.Comments {
		if !strings.HasPrefix(strings.ToUpper(comment), prefix) {
			kept = append(kept, comment)
		}
	}
	cmt.Comments = kept
	_ = cmt.Add(field, value)
}
