package artifacts

import "errors"

var errNotInitialized = errors.New("artifact loader not initialized")

func IsArtifactLoadError(err error) bool {
	var e *ArtifactLoadError
	return errors.As(err, &e)
}

func IsDataLoadError(err error) bool {
	var e *DataLoadError
	return errors.As(err, &e)
}
