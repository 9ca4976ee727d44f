package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanshika/referralnet/internal/service"
)

// AccountsFile and PayloadFile are the names written by WriteDataset.
const (
	AccountsFile = "accounts.json"
	PayloadFile  = "referrals.json"
)

// WriteDataset serializes the accounts into accounts.json and the nested
// payload of the dataset's roots into referrals.json under dir.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, AccountsFile), dataset.Accounts); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, PayloadFile), Payload(dataset, "")); err != nil {
		return err
	}
	return nil
}

// ReadAccounts loads an accounts.json file.
func ReadAccounts(path string) ([]service.AccountInput, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var accounts []service.AccountInput
	if err := json.NewDecoder(file).Decode(&accounts); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return accounts, nil
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}
