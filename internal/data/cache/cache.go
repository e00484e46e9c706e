package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-glider-monitor/internal/data/aggregator"
	"github.com/penwyp/go-glider-monitor/internal/util"
)

const cacheExt = ".json"

// fingerprintSkipAge is how old a log must be before its unchanged
// inode/size/mtime are trusted without reading it.
const fingerprintSkipAge = 48 * time.Hour

type CacheMissReason int

const (
	MissReasonNone CacheMissReason = iota
	MissReasonError
	MissReasonInode
	MissReasonSize
	MissReasonModTime
	MissReasonFingerprint
	MissReasonNoFingerprint
	MissReasonNotFound
	MissReasonConfig
)

func (r CacheMissReason) String() string {
	switch r {
	case MissReasonNone:
		return "none"
	case MissReasonError:
		return "Cache read error"
	case MissReasonInode:
		return "File inode changed"
	case MissReasonSize:
		return "File size changed"
	case MissReasonModTime:
		return "Modification time changed"
	case MissReasonFingerprint:
		return "File fingerprint changed"
	case MissReasonNoFingerprint:
		return "Cached entry has no fingerprint"
	case MissReasonNotFound:
		return "Cache not found"
	case MissReasonConfig:
		return "Analysis settings changed"
	default:
		return "Unknown reason"
	}
}

type CacheResult struct {
	Data       *aggregator.AggregatedData
	Found      bool
	MissReason CacheMissReason
}

type BatchValidateResult struct {
	Valid      bool
	MissReason CacheMissReason
}

type Cache interface {
	Get(key string) CacheResult
	Set(key string, data *aggregator.AggregatedData) error
	Delete(key string) error
	Clear() error
	Preload() error
	BatchValidate(keys []string) map[string]BatchValidateResult
	GetCacheStats() (memoryCount, fileCount int)
}

// FileCache keeps one JSON document per flight on disk, mirrored in memory.
// Entries are only served while the log file is unchanged and was analysed
// with the same settings.
type FileCache struct {
	baseDir      string
	settingsHash string
	mu           sync.RWMutex
	memoryCache  map[string]*aggregator.AggregatedData
}

// NewFileCache creates baseDir if needed. settingsHash is compared against
// every entry; see aggregator.Aggregator.SettingsHash.
func NewFileCache(baseDir, settingsHash string) (*FileCache, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &FileCache{
		baseDir:      baseDir,
		settingsHash: settingsHash,
		memoryCache:  make(map[string]*aggregator.AggregatedData),
	}, nil
}

func (c *FileCache) entryPath(key string) string {
	return filepath.Join(c.baseDir, key+cacheExt)
}

func (c *FileCache) Get(key string) CacheResult {
	c.mu.RLock()
	memData, exists := c.memoryCache[key]
	c.mu.RUnlock()

	if exists {
		if ret := c.validateCachedData(memData); ret.cached {
			return CacheResult{Data: memData, Found: true, MissReason: MissReasonNone}
		}
		c.mu.Lock()
		delete(c.memoryCache, key)
		c.mu.Unlock()
	}

	result := c.getFromFile(key)
	if result.Found {
		c.mu.Lock()
		c.memoryCache[key] = result.Data
		c.mu.Unlock()
	}
	return result
}

func (c *FileCache) getFromFile(key string) CacheResult {
	data, err := readEntry(c.entryPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return CacheResult{MissReason: MissReasonNotFound}
		}
		util.LogDebugf("Unreadable cache entry %s: %v", key, err)
		return CacheResult{MissReason: MissReasonError}
	}

	if ret := c.validateCachedData(data); !ret.cached {
		return CacheResult{MissReason: ret.reason}
	}
	return CacheResult{Data: data, Found: true, MissReason: MissReasonNone}
}

func readEntry(path string) (*aggregator.AggregatedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data aggregator.AggregatedData
	if err := sonic.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	if data.FlightID == "" && data.FilePath != "" {
		data.FlightID = aggregator.ExtractFlightID(data.FilePath)
	}
	return &data, nil
}

type ValidateResult struct {
	cached bool
	reason CacheMissReason
}

func (c *FileCache) validateCachedData(data *aggregator.AggregatedData) ValidateResult {
	if data.SettingsHash != c.settingsHash {
		util.LogDebugf("Cache invalidated for %s: settings changed (cached: %s, current: %s)",
			data.FilePath, data.SettingsHash, c.settingsHash)
		return ValidateResult{cached: false, reason: MissReasonConfig}
	}

	currentInfo, err := util.GetFileInfo(data.FilePath)
	if err != nil {
		util.LogDebugf("Cache validation failed for %s: unable to get file info: %v", data.FilePath, err)
		return ValidateResult{cached: false, reason: MissReasonError}
	}

	if currentInfo.Inode != data.Inode {
		util.LogDebugf("Cache invalidated for %s: inode changed (cached: %d, current: %d)",
			data.FilePath, data.Inode, currentInfo.Inode)
		return ValidateResult{cached: false, reason: MissReasonInode}
	}
	if currentInfo.Size != data.FileSize {
		util.LogDebugf("Cache invalidated for %s: size changed (cached: %d, current: %d)",
			data.FilePath, data.FileSize, currentInfo.Size)
		return ValidateResult{cached: false, reason: MissReasonSize}
	}
	if currentInfo.ModTime != data.LastModified {
		util.LogDebugf("Cache invalidated for %s: modtime changed (cached: %d, current: %d)",
			data.FilePath, data.LastModified, currentInfo.ModTime)
		return ValidateResult{cached: false, reason: MissReasonModTime}
	}

	if time.Since(time.Unix(0, currentInfo.ModTime)) > fingerprintSkipAge {
		return ValidateResult{cached: true, reason: MissReasonNone}
	}

	if data.ContentFingerprint == "" {
		util.LogDebugf("Cache invalidated for %s: no fingerprint in cached data", data.FilePath)
		return ValidateResult{cached: false, reason: MissReasonNoFingerprint}
	}

	fingerprint, err := util.CalculateFileFingerprint(data.FilePath)
	if err != nil {
		util.LogDebugf("Cache invalidated for %s: unable to calculate fingerprint: %v", data.FilePath, err)
		return ValidateResult{cached: false, reason: MissReasonNoFingerprint}
	}
	if fingerprint != data.ContentFingerprint {
		util.LogDebugf("Cache invalidated for %s: fingerprint mismatch (cached: %s, current: %s)",
			data.FilePath, data.ContentFingerprint, fingerprint)
		return ValidateResult{cached: false, reason: MissReasonFingerprint}
	}

	return ValidateResult{cached: true, reason: MissReasonNone}
}

// Set stamps data with the current file attributes and settings hash, then
// stores it on disk and in memory.
func (c *FileCache) Set(key string, data *aggregator.AggregatedData) error {
	fileInfo, err := util.GetFileInfo(data.FilePath)
	if err != nil {
		return err
	}

	data.LastModified = fileInfo.ModTime
	data.FileSize = fileInfo.Size
	data.Inode = fileInfo.Inode
	data.SettingsHash = c.settingsHash
	if fingerprint, err := util.CalculateFileFingerprint(data.FilePath); err == nil {
		data.ContentFingerprint = fingerprint
	}
	if data.FlightID == "" {
		data.FlightID = aggregator.ExtractFlightID(data.FilePath)
	}

	encoded, err := sonic.ConfigStd.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// write then rename so a concurrent Preload never sees half an entry
	tmp, err := os.CreateTemp(c.baseDir, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), c.entryPath(key)); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	c.memoryCache[key] = data
	return nil
}

// Delete drops one entry. Deleting a missing entry is not an error.
func (c *FileCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.memoryCache, key)
	if err := os.Remove(c.entryPath(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (c *FileCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.memoryCache = make(map[string]*aggregator.AggregatedData)

	files, err := c.listEntries()
	if err != nil {
		return err
	}
	for _, path := range files {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (c *FileCache) listEntries() ([]string, error) {
	entries, err := os.ReadDir(c.baseDir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), cacheExt) {
			files = append(files, filepath.Join(c.baseDir, entry.Name()))
		}
	}
	return files, nil
}

func (c *FileCache) Preload() error {
	util.LogDebug("Start preloading cache files into memory...")

	cacheFiles, err := c.listEntries()
	if err != nil {
		return fmt.Errorf("failed to scan cache directory: %w", err)
	}

	if len(cacheFiles) == 0 {
		util.LogDebug("Cache directory is empty, skipping preload")
		return nil
	}

	numWorkers := min(runtime.NumCPU(), len(cacheFiles))
	util.LogDebugf("Found %d cache files, loading with %d workers", len(cacheFiles), numWorkers)

	filesChan := make(chan string, len(cacheFiles))
	resultsChan := make(chan preloadResult, len(cacheFiles))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go c.preloadWorker(filesChan, resultsChan, &wg)
	}

	for _, file := range cacheFiles {
		filesChan <- file
	}
	close(filesChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	loaded, invalid, errors := 0, 0, 0
	valid := make(map[string]*aggregator.AggregatedData)
	for result := range resultsChan {
		switch {
		case result.err != nil:
			errors++
			util.LogWarnf("Failed to preload cache file %s: %v", result.filePath, result.err)
		case c.validateCachedData(result.data).cached:
			valid[result.key] = result.data
			loaded++
		default:
			invalid++
		}
	}

	c.mu.Lock()
	for key, data := range valid {
		c.memoryCache[key] = data
	}
	c.mu.Unlock()

	util.LogInfof("Cache preload complete: %d loaded, %d invalid, %d errors (total %d)",
		loaded, invalid, errors, len(cacheFiles))
	return nil
}

type preloadResult struct {
	filePath string
	key      string
	data     *aggregator.AggregatedData
	err      error
}

func (c *FileCache) preloadWorker(filesChan <-chan string, resultsChan chan<- preloadResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for filePath := range filesChan {
		name := filepath.Base(filePath)
		result := preloadResult{
			filePath: filePath,
			key:      strings.TrimSuffix(name, filepath.Ext(name)),
		}
		result.data, result.err = readEntry(filePath)
		resultsChan <- result
	}
}

func (c *FileCache) GetCacheStats() (memoryCount, fileCount int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	files, _ := c.listEntries()
	return len(c.memoryCache), len(files)
}

// BatchValidate checks many keys at once. Keys that validate from disk are
// promoted into memory so the following Get is free.
func (c *FileCache) BatchValidate(keys []string) map[string]BatchValidateResult {
	result := make(map[string]BatchValidateResult, len(keys))

	for _, key := range keys {
		cacheResult := c.Get(key)
		result[key] = BatchValidateResult{
			Valid:      cacheResult.Found,
			MissReason: cacheResult.MissReason,
		}
	}

	validCount := 0
	for _, r := range result {
		if r.Valid {
			validCount++
		}
	}
	util.LogDebugf("Batch validation complete: %d files, %d valid", len(keys), validCount)

	return result
}
