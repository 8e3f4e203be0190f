package main

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/abrezinsky/snackcounter/internal/catalog"
	"github.com/abrezinsky/snackcounter/internal/models"
)

// shell is a line-oriented console over a catalog model
type shell struct {
	model    *catalog.Model
	in       *bufio.Scanner
	out      io.Writer
	open     func(string) error
	readFile func(string) ([]byte, error)
}

func newShell(model *catalog.Model, in io.Reader, out io.Writer, open func(string) error) *shell {
	return &shell{
		model:    model,
		in:       bufio.NewScanner(in),
		out:      out,
		open:     open,
		readFile: os.ReadFile,
	}
}

const helpText = `Commands:
  list                     Show the catalog (filtered by the current search)
  search [text]            Filter by name; no text clears the search
  select <id>              Toggle selection of a snack
  edit <id>                Start editing a snack's price
  price <value>            Set the price being edited
  commit | cancel          Save or discard the price edit
  upload                   Open the new snack form
  category <name>          Vegetarian, Non Vegetarian or Juice
  name <text>              Snack name
  uprice <value>           Snack price
  file <path>              Choose the snack image
  preview                  Open the chosen image
  submit | close           Add the snack or discard the form
  delete <id>              Delete a snack (asks for confirmation)
  open <id>                Open a snack's image
  save                     Print the local catalog as JSON
  reload                   Fetch the catalog again
  help                     Show this help
  quit                     Exit
`

// run reads commands until quit or EOF
func (s *shell) run(ctx context.Context) {
	s.prompt()
	for s.in.Scan() {
		if !s.exec(ctx, s.in.Text()) {
			return
		}
		if ctx.Err() != nil {
			return
		}
		s.prompt()
	}
}

func (s *shell) prompt() {
	switch s.model.DraftKind() {
	case catalog.DraftEditing:
		d, _ := s.model.Editing()
		fmt.Fprintf(s.out, "edit %s [%s]> ", d.ID, d.Price)
	case catalog.DraftUploading:
		fmt.Fprint(s.out, "upload> ")
	default:
		fmt.Fprint(s.out, "> ")
	}
}

// exec runs one command line. It returns false when the shell should exit.
func (s *shell) exec(ctx context.Context, line string) bool {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch strings.ToLower(cmd) {
	case "":
		return true
	case "quit", "exit":
		return false
	case "help", "?":
		fmt.Fprint(s.out, helpText)
	case "list", "ls":
		s.list()
	case "search":
		s.model.SetQuery(arg)
		s.list()
	case "select":
		err = s.withSnack(arg, func(models.Category) error {
			s.model.Toggle(arg)
			return nil
		})
	case "edit":
		err = s.withSnack(arg, func(cat models.Category) error { return s.model.StartEdit(cat, arg) })
	case "price":
		err = s.model.SetDraftPrice(arg)
	case "commit":
		if err = s.model.CommitEdit(ctx); err == nil {
			fmt.Fprintln(s.out, "Price updated.")
		}
	case "cancel":
		s.model.CancelEdit()
	case "upload":
		err = s.model.OpenUpload()
	case "category":
		err = s.model.SetUploadCategory(matchCategory(arg))
	case "name":
		err = s.model.SetUploadName(arg)
	case "uprice":
		err = s.model.SetUploadPrice(arg)
	case "file":
		err = s.chooseFile(arg)
	case "preview":
		err = s.preview()
	case "submit":
		if err = s.model.SubmitUpload(ctx); err == nil {
			fmt.Fprintln(s.out, "Snack added.")
		}
	case "close":
		s.model.CloseUpload()
	case "delete", "rm":
		err = s.withSnack(arg, func(cat models.Category) error {
			return s.model.Delete(ctx, cat, arg, catalog.ConfirmFunc(s.confirm))
		})
	case "open":
		err = s.withSnack(arg, func(cat models.Category) error {
			for _, sn := range s.model.Catalog()[cat] {
				if sn.ID == arg {
					return s.open(s.model.ImageURL(sn))
				}
			}
			return nil
		})
	case "save":
		var data []byte
		if data, err = s.model.Export(); err == nil {
			fmt.Fprintf(s.out, "Data:\n%s\n", data)
		}
	case "reload":
		if err = s.model.Load(ctx); err == nil {
			s.list()
		}
	default:
		fmt.Fprintf(s.out, "Unknown command %q. Type help for a list.\n", cmd)
	}

	s.report(err)
	return true
}

func (s *shell) report(err error) {
	if err == nil || stderrors.Is(err, catalog.ErrSuperseded) {
		return
	}
	fmt.Fprintln(s.out, catalog.Notice(err))
}

func (s *shell) withSnack(id string, fn func(models.Category) error) error {
	if id == "" {
		fmt.Fprintln(s.out, "Which snack? Give its id.")
		return nil
	}
	cat, _, ok := s.model.Catalog().Find(id)
	if !ok {
		fmt.Fprintf(s.out, "No snack with id %q.\n", id)
		return nil
	}
	return fn(cat)
}

func (s *shell) confirm(prompt string) bool {
	fmt.Fprintf(s.out, "%s [y/N] ", prompt)
	if !s.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(s.in.Text()))
	return answer == "y" || answer == "yes"
}

func (s *shell) chooseFile(path string) error {
	if path == "" {
		fmt.Fprintln(s.out, "Give the path of an image file.")
		return nil
	}
	data, err := s.readFile(path)
	if err != nil {
		fmt.Fprintf(s.out, "Cannot read %s: %v\n", path, err)
		return nil
	}
	return s.model.ChooseFile(catalog.File{
		Name:        filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	})
}

func (s *shell) preview() error {
	u, ok := s.model.Uploading()
	if !ok {
		return catalog.ErrNoDraft
	}
	if u.PreviewRef == "" {
		fmt.Fprintln(s.out, "No image chosen.")
		return nil
	}
	return s.open(u.PreviewRef)
}

func (s *shell) list() {
	view := s.model.View()
	edit, editing := s.model.Editing()
	selected := s.model.Selection()

	for _, cat := range models.Categories {
		fmt.Fprintf(s.out, "== %s ==\n", cat)
		items := view[cat]
		if len(items) == 0 {
			fmt.Fprintln(s.out, "   (none)")
			continue
		}
		for _, sn := range items {
			mark := " "
			if selected[sn.ID] {
				mark = "*"
			}
			price := fmt.Sprintf("₹%s", formatPrice(sn.Price))
			if editing && edit.ID == sn.ID {
				price = fmt.Sprintf("₹[%s]", edit.Price)
			}
			fmt.Fprintf(s.out, " %s %-24s %-10s %s  %s\n", mark, sn.Name, price, sn.ID, s.model.ImageURL(sn))
		}
	}

	if len(selected) > 0 {
		ids := make([]string, 0, len(selected))
		for id := range selected {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		fmt.Fprintf(s.out, "Selected: %s\n", strings.Join(ids, ", "))
	}
}

// matchCategory accepts category names case-insensitively and with short forms
func matchCategory(s string) models.Category {
	norm := strings.ToLower(strings.Join(strings.Fields(s), " "))
	switch norm {
	case "veg":
		return models.Vegetarian
	case "nonveg", "non-veg", "non veg", "non-vegetarian":
		return models.NonVegetarian
	}
	for _, c := range models.Categories {
		if strings.ToLower(string(c)) == norm {
			return c
		}
	}
	return models.Category(s)
}

func formatPrice(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("%d", int64(p))
	}
	return fmt.Sprintf("%.2f", p)
}
