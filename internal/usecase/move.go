package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vbjayanti/cumulus/internal/cmrmeta"
	"github.com/vbjayanti/cumulus/internal/domain/granules"
)

// Move relocates a granule's files according to the destination rules and
// keeps the granule's CMR metadata document pointing at the new locations.
//
// The collision check and the copies that follow are not atomic: an
// external writer can create a destination object between the check and the
// copy. That race is accepted; a file overwritten this way is flagged with
// duplicate_found. Files are moved one by one with no rollback - a failure
// partway persists the locations of the files that did relocate and returns
// a MoveError naming what moved and what did not, so a retry with the same
// destinations skips files already at their target instead of colliding
// with its own earlier copies. A catalog failure after all files have moved
// still persists the record; the record then matches the object store and
// only the catalog is stale, repaired by a later republish.
func (s *GranuleService) Move(ctx context.Context, granuleID string, destinations []granules.Destination) (granules.Granule, error) {
	granule, err := s.Granules.Get(ctx, granuleID)
	if err != nil {
		return granules.Granule{}, err
	}

	targets, err := granules.ResolveDestinations(granule.Files, destinations)
	if err != nil {
		return granules.Granule{}, err
	}

	colliding, err := s.filesExistingAtDestination(ctx, granule.Files, targets)
	if err != nil {
		return granules.Granule{}, fmt.Errorf("check move destinations for granule %s: %w", granuleID, err)
	}
	if len(colliding) > 0 {
		names := make([]string, len(colliding))
		for i, file := range colliding {
			names[i] = file.FileName
		}
		return granules.Granule{}, &granules.ConflictError{FileNames: names}
	}

	urlMapping := make(map[string]string)
	var moved []string
	for i := range granule.Files {
		file := &granule.Files[i]
		target := targets[file.FileName]
		if target == file.Location() {
			continue
		}
		if err := s.moveFile(ctx, file, target, urlMapping); err != nil {
			s.persistMoveProgress(ctx, granule, urlMapping)
			return granule, &granules.MoveError{
				GranuleID: granuleID,
				Moved:     moved,
				Remaining: remainingFileNames(granule.Files[i:], targets),
				Err:       err,
			}
		}
		moved = append(moved, file.FileName)
	}

	catalogErr := s.rewriteMovedMetadata(ctx, granule, urlMapping)

	granule.UpdatedAt = s.Clock()
	updated, err := s.Granules.Update(ctx, granule)
	if err != nil {
		return granule, fmt.Errorf("persist granule %s after move: %w", granuleID, err)
	}
	if catalogErr != nil {
		return updated, catalogErr
	}
	return updated, nil
}

// persistMoveProgress saves what an interrupted move managed to do: the
// metadata URLs of the files already relocated are rewritten and the record
// is updated to their new locations. Without this a retry would find its
// own copies at the targets and refuse with a conflict.
func (s *GranuleService) persistMoveProgress(ctx context.Context, granule granules.Granule, urlMapping map[string]string) {
	if err := s.rewriteMovedMetadata(ctx, granule, urlMapping); err != nil {
		log.Printf("move %s: rewriting metadata after partial failure: %v", granule.GranuleID, err)
	}
	granule.UpdatedAt = s.Clock()
	if _, err := s.Granules.Update(ctx, granule); err != nil {
		log.Printf("move %s: persisting partial progress: %v", granule.GranuleID, err)
	}
}

// filesExistingAtDestination queries the object store for every computed
// target and returns the files whose destination is already occupied, in
// input order. Files already sitting at their target are not candidates,
// which is what makes a repeated move a no-op instead of a self-collision.
func (s *GranuleService) filesExistingAtDestination(ctx context.Context, files []granules.File, targets map[string]granules.Location) ([]granules.File, error) {
	exists := make([]bool, len(files))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, file := range files {
		target := targets[file.FileName]
		if target == file.Location() {
			continue
		}
		group.Go(func() error {
			found, err := s.Objects.Exists(groupCtx, target.Bucket, target.Key)
			if err != nil {
				return err
			}
			exists[i] = found
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var colliding []granules.File
	for i, file := range files {
		if exists[i] {
			colliding = append(colliding, file)
		}
	}
	return colliding, nil
}

func (s *GranuleService) moveFile(ctx context.Context, file *granules.File, target granules.Location, urlMapping map[string]string) error {
	// Point-in-time recheck: the fan-out check above said the target was
	// free, but a racing writer may have filled it since. The copy still
	// proceeds; the overwrite is recorded on the file.
	occupied, err := s.Objects.Exists(ctx, target.Bucket, target.Key)
	if err != nil {
		return fmt.Errorf("head %s: %w", granules.S3URI(target.Bucket, target.Key), err)
	}
	if occupied {
		file.DuplicateFound = true
	}

	if err := s.Objects.Copy(ctx, file.Bucket, file.Key, target.Bucket, target.Key); err != nil {
		return fmt.Errorf("copy %s to %s: %w",
			granules.S3URI(file.Bucket, file.Key), granules.S3URI(target.Bucket, target.Key), err)
	}
	if err := s.Objects.Delete(ctx, file.Bucket, file.Key); err != nil {
		return fmt.Errorf("delete %s: %w", granules.S3URI(file.Bucket, file.Key), err)
	}

	s.recordURLChange(urlMapping, file.Location(), target)
	file.Bucket = target.Bucket
	file.Key = target.Key
	return nil
}

// recordURLChange registers every way the old location may be spelled in a
// metadata document: the s3 URI and, when configured, the distribution
// endpoint URL.
func (s *GranuleService) recordURLChange(mapping map[string]string, from, to granules.Location) {
	mapping[granules.S3URI(from.Bucket, from.Key)] = granules.S3URI(to.Bucket, to.Key)
	if s.DistributionEndpoint != "" {
		base := strings.TrimRight(s.DistributionEndpoint, "/")
		mapping[base+"/"+from.Bucket+"/"+from.Key] = base + "/" + to.Bucket + "/" + to.Key
	}
}

// rewriteMovedMetadata updates the granule's CMR document, if it has one,
// so its related URLs track the files that just moved. The document is
// written back to its own location, which the move itself may have changed.
// Failures here are catalog errors: the files are already relocated and a
// follow-up republish repairs the divergence.
func (s *GranuleService) rewriteMovedMetadata(ctx context.Context, granule granules.Granule, urlMapping map[string]string) error {
	if len(urlMapping) == 0 {
		return nil
	}
	metadataFile := metadataFileOf(granule.Files)
	if metadataFile == nil {
		return nil
	}

	doc, err := s.Objects.Get(ctx, metadataFile.Bucket, metadataFile.Key)
	if err != nil {
		return &granules.CatalogError{Op: "read metadata", Err: err}
	}
	format, err := cmrmeta.DetectFormat(metadataFile.FileName, doc)
	if err != nil {
		return &granules.CatalogError{Op: "detect metadata format", Err: err}
	}
	updated, err := cmrmeta.Rewrite(doc, format, urlMapping)
	if err != nil {
		return &granules.CatalogError{Op: "rewrite metadata", Err: err}
	}
	if err := s.Objects.Put(ctx, metadataFile.Bucket, metadataFile.Key, updated); err != nil {
		return &granules.CatalogError{Op: "write metadata", Err: err}
	}

	// A published granule's catalog entry still carries the old URLs;
	// re-push the rewritten document so the catalog follows the files.
	if granule.Published {
		if err := s.Catalog.PublishGranule(ctx, granule.GranuleID, updated, string(format)); err != nil {
			return &granules.CatalogError{Op: "republish", Err: err}
		}
	}
	return nil
}

func metadataFileOf(files []granules.File) *granules.File {
	for i := range files {
		if cmrmeta.IsMetadataFile(files[i].FileName) {
			return &files[i]
		}
	}
	return nil
}

func remainingFileNames(files []granules.File, targets map[string]granules.Location) []string {
	var remaining []string
	for _, file := range files {
		if targets[file.FileName] != file.Location() {
			remaining = append(remaining, file.FileName)
		}
	}
	return remaining
}
