package cmd

import (
	"errors"
	"fmt"

	"github.com/fixora/fixora-service/internal/storage"
	"github.com/spf13/cobra"
)

var uploadBucket string

var uploadImageCmd = &cobra.Command{
	Use:   "upload-image <uri>",
	Short: "Upload a local file or http(s) image to object storage and print its public URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runUploadImage,
}

func init() {
	uploadImageCmd.Flags().StringVar(&uploadBucket, "bucket", "", "target bucket (default STORAGE_BUCKET)")
	rootCmd.AddCommand(uploadImageCmd)
}

func runUploadImage(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Storage.Endpoint == "" && cfg.Storage.PublicURL == "" {
		return errors.New("upload-image: STORAGE_ENDPOINT or STORAGE_PUBLIC_URL must be set")
	}
	uploader, err := storage.NewS3Uploader(cmd.Context(), storage.Options{
		Endpoint:        cfg.Storage.Endpoint,
		Region:          cfg.Storage.Region,
		AccessKeyID:     cfg.Storage.AccessKeyID,
		SecretAccessKey: cfg.Storage.SecretAccessKey,
		Bucket:          cfg.Storage.Bucket,
		PublicURL:       cfg.Storage.PublicURL,
		AllowedBuckets:  cfg.Storage.AllowedBuckets,
	}, log)
	if err != nil {
		return err
	}
	upload := uploader.UploadFile
	if storage.IsRemoteURI(args[0]) {
		upload = uploader.Upload
	}
	url, err := upload(cmd.Context(), args[0], uploadBucket)
	if err != nil {
		return fmt.Errorf("upload-image: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), url)
	return nil
}
