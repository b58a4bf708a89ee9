package mediameta

import "github.com/simonhull/mediameta/internal/types"

// Info is the analysis record for one file.
type Info = types.Info

// AudioInfo describes the primary audio stream.
type AudioInfo = types.AudioInfo

// VideoInfo describes the primary video stream.
type VideoInfo = types.VideoInfo

// Comments maps lowercase tag keys to their values.
type Comments = types.Comments

// Picture is an embedded image.
type Picture = types.Picture

// PictureType is the ID3v2 picture type.
type PictureType = types.PictureType

// Chapter is a chapter marker.
type Chapter = types.Chapter
