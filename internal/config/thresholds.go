package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/turtacn/VitalGuard/internal/domain/scoring"
	"github.com/turtacn/VitalGuard/pkg/errors"
)

// LoadThresholds overlays the threshold file at path onto the built-in
// defaults. Keys omitted from the file keep their defaults; a table given
// in the file replaces the default table as a whole. Unknown keys are
// rejected so a misspelt section cannot be silently ignored.
func LoadThresholds(path string) (*scoring.Thresholds, error) {
	th := scoring.DefaultThresholds()
	if path == "" {
		return th, nil
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := readFile(v, path); err != nil {
		return nil, err
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           th,
		TagName:          "mapstructure",
		ZeroFields:       true,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "build threshold decoder")
	}
	if err := dec.Decode(v.AllSettings()); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidThresholdTable, "threshold file does not match the threshold schema").WithDetail(path)
	}
	if err := th.Validate(); err != nil {
		return nil, err
	}
	return th, nil
}

// ThresholdLoader returns a loader that re-reads the threshold file on every
// call, suitable as the base of an engine reload.
func ThresholdLoader(path string) func() (*scoring.Thresholds, error) {
	return func() (*scoring.Thresholds, error) {
		return LoadThresholds(path)
	}
}

// WatchThresholds calls onChange each time the threshold file at path is
// written, created or renamed into place, until ctx is cancelled. The parent
// directory is watched so editors that replace the file are still seen.
// Watcher failures go to onError when set.
func WatchThresholds(ctx context.Context, path string, onChange func(), onError func(error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigFile, "create threshold file watcher")
	}
	target := filepath.Clean(path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return errors.Wrap(err, errors.ErrCodeConfigFile, "watch threshold file").WithDetail(path)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					onChange()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(err)
				}
			}
		}
	}()
	return nil
}
