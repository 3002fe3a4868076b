// Команда posadmin - служебные операции с базой POS.
//
//	posadmin set-admin-password [-d dsn] < password.txt
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/iurnickita/seafoodpos/internal/config"
	"github.com/iurnickita/seafoodpos/internal/store"
)

const adminUsername = "admin"

var ErrEmptyPassword = errors.New("empty password")

func main() {
	if err := run(os.Args[1:], os.Stdin); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdin io.Reader) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: posadmin set-admin-password [-d dsn]")
	}

	switch args[0] {
	case "set-admin-password":
		cfg, err := config.GetStoreConfig(args[0], args[1:])
		if err != nil {
			return err
		}
		password, err := readPassword(stdin)
		if err != nil {
			return err
		}
		hash, err := hashPassword(password)
		if err != nil {
			return err
		}

		store, err := store.NewStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		if err = store.AuthSetPassword(context.Background(), adminUsername, hash); err != nil {
			return err
		}
		fmt.Println("Admin password updated.")
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// readPassword читает пароль: с терминала - без эха, из канала - первую строку
func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(os.Stderr, "New admin password: ")
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		if len(password) == 0 {
			return "", ErrEmptyPassword
		}
		return string(password), nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", ErrEmptyPassword
	}
	return password, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
