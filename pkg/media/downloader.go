package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/logging"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
)

const (
	DefaultDownloaderBinary = "yt-dlp"
	// AudioFormat asks for the smallest audio stream: opus under 64 kbps, any
	// stream under 64 kbps, then any audio.
	AudioFormat = "bestaudio[acodec=opus][abr<=64]/bestaudio[abr<=64]/bestaudio/best"
)

var ErrDownloaderMissing = errors.New("downloader executable not found")

// DownloadReason classifies a failed download.
type DownloadReason string

const (
	DownloadToolMissing DownloadReason = "tool_missing"
	DownloadToolFailed  DownloadReason = "tool_failed"
	DownloadFileMissing DownloadReason = "file_missing"
)

type DownloadError struct {
	Reason     DownloadReason
	CommandLog utils.CommandLog
	Err        error
}

func (e *DownloadError) Error() string {
	if e == nil {
		return ""
	}
	if e.CommandLog.Command == "" {
		return fmt.Sprintf("download %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("download %s: %v (cmd=%s exit=%d)", e.Reason, e.Err, e.CommandLog.Command, e.CommandLog.ExitCode)
}

func (e *DownloadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Downloader fetches audio into a Cache with yt-dlp. It never retries.
type Downloader struct {
	binary     string
	cookieFile string
	cache      *Cache
	runner     utils.CommandRunner
	lookPath   func(file string) (string, error)
	stat       func(name string) (os.FileInfo, error)
}

type DownloaderOption func(*Downloader)

func WithDownloaderBinary(binary string) DownloaderOption {
	return func(d *Downloader) {
		if strings.TrimSpace(binary) != "" {
			d.binary = strings.TrimSpace(binary)
		}
	}
}

// WithCookieFile passes the file to yt-dlp when it exists at download time.
func WithCookieFile(path string) DownloaderOption {
	return func(d *Downloader) {
		d.cookieFile = strings.TrimSpace(path)
	}
}

func WithCommandRunner(runner utils.CommandRunner) DownloaderOption {
	return func(d *Downloader) {
		if runner != nil {
			d.runner = runner
		}
	}
}

func withLookPath(lookPath func(file string) (string, error)) DownloaderOption {
	return func(d *Downloader) {
		d.lookPath = lookPath
	}
}

func NewDownloader(cache *Cache, opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		binary:   DefaultDownloaderBinary,
		cache:    cache,
		runner:   &utils.ExecRunner{},
		lookPath: exec.LookPath,
		stat:     os.Stat,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

func (d *Downloader) Cache() *Cache {
	return d.cache
}

// Download saves the audio of sourceURL as {cache_root}/{id}.{ext} and
// returns the resolved path.
func (d *Downloader) Download(ctx context.Context, sourceURL, id string) (string, error) {
	log := logging.NewLogger(ctx)

	binary, err := d.lookPath(d.binary)
	if err != nil {
		return "", &DownloadError{Reason: DownloadToolMissing, Err: errors.Join(ErrDownloaderMissing, err)}
	}

	args := d.buildArgs(sourceURL, id)
	log.Infof("download video_id=%q binary=%q cookies=%t", id, binary, containsArg(args, "--cookies"))

	result, runErr := d.runner.Run(ctx, binary, args...)
	cmdLog := utils.NewCommandLog(binary, args, result)
	if runErr != nil {
		if errors.Is(runErr, exec.ErrNotFound) {
			return "", &DownloadError{Reason: DownloadToolMissing, CommandLog: cmdLog, Err: errors.Join(ErrDownloaderMissing, runErr)}
		}
		log.Warnf("download video_id=%q failed exit=%d stderr=%q", id, result.ExitCode, utils.Truncate(result.Stderr, 500))
		return "", &DownloadError{Reason: DownloadToolFailed, CommandLog: cmdLog, Err: runErr}
	}

	path, err := d.resolvePath(id, result.LastLine())
	if err != nil {
		return "", &DownloadError{Reason: DownloadFileMissing, CommandLog: cmdLog, Err: err}
	}

	log.Infof("download video_id=%q path=%q", id, path)
	return path, nil
}

func (d *Downloader) buildArgs(sourceURL, id string) []string {
	root := d.cache.Root()
	args := []string{
		"-f", AudioFormat,
		"-o", filepath.Join(root, id+".%(ext)s"),
		"--no-playlist",
		"--no-check-certificates",
		"--cache-dir", filepath.Join(root, ".ytcache"),
		"--quiet",
		"--print", "after_move:filepath",
	}
	if d.cookieFile != "" {
		if info, err := d.stat(d.cookieFile); err == nil && info.Mode().IsRegular() {
			args = append(args, "--cookies", d.cookieFile)
		}
	}
	return append(args, sourceURL)
}

// resolvePath trusts the path yt-dlp printed, then probes the known
// extensions. A reported file outside the cache is copied in.
func (d *Downloader) resolvePath(id, reported string) (string, error) {
	if reported != "" {
		if info, err := d.stat(reported); err == nil && info.Mode().IsRegular() {
			if filepath.Dir(filepath.Clean(reported)) == filepath.Clean(d.cache.Root()) {
				return reported, nil
			}
			return d.cache.Adopt(id, reported)
		}
	}

	if path, ok := d.cache.Lookup(id); ok {
		return path, nil
	}
	return "", utils.WrapIfNotNil(fmt.Errorf("no audio file for %s under %s", id, d.cache.Root()))
}

func containsArg(args []string, target string) bool {
	for _, arg := range args {
		if arg == target {
			return true
		}
	}
	return false
}
