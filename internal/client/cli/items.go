package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/stockkeeper/internal/api"
	"github.com/dmitrijs2005/stockkeeper/internal/netx"
)

// uploadPhoto is a test seam for the presigned PUT.
var uploadPhoto = netx.UploadToPresignedURL

// maxPhotoSize caps what add-photo reads into memory.
const maxPhotoSize = 10 << 20

type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, splitList(v)...)
	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *App) Items(ctx context.Context, args []string) error {
	var (
		req  api.ListItemsRequest
		tags listFlag
	)
	fs := newFlagSet("items")
	fs.Var(&tags, "tag", "tag id, repeatable or comma separated")
	fs.StringVar(&req.SearchTerm, "q", "", "search term")
	fs.StringVar(&req.Sort, "sort", "", "newest, oldest, a-z or z-a")
	fs.BoolVar(&req.OnlyOwn, "own", false, "only items you created")
	fs.IntVar(&req.Page, "page", 0, "page number")
	fs.IntVar(&req.Limit, "limit", 0, "page size, at most 50")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	req.TagIDs = tags

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	page, err := a.client.ListItems(ctx, &req)
	if err != nil {
		return err
	}
	if len(page.Items) == 0 {
		fmt.Fprintln(a.out, "No items")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tVALUE\tTAGS\tPHOTOS")
	for _, it := range page.Items {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%d\n", it.ID, it.Name, it.Value, strings.Join(it.TagIDs, ","), len(it.Photos))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "page %d, %d of %d items\n", page.Page, len(page.Items), page.Total)
	return nil
}

func (a *App) ShowItem(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	it, err := a.client.GetItem(ctx, args[0])
	if err != nil {
		return err
	}
	a.printItem(it)
	return nil
}

func (a *App) printItem(it *api.Item) {
	fmt.Fprintf(a.out, "ID:          %s\n", it.ID)
	fmt.Fprintf(a.out, "Name:        %s\n", it.Name)
	fmt.Fprintf(a.out, "Value:       %.2f\n", it.Value)
	fmt.Fprintf(a.out, "Tags:        %s\n", strings.Join(it.TagIDs, ", "))
	fmt.Fprintf(a.out, "Created:     %s by %s\n", formatTime(it.CreatedAt), it.CreatedBy)
	fmt.Fprintf(a.out, "Updated:     %s\n", formatTime(it.UpdatedAt))
	if it.Description != "" {
		fmt.Fprintf(a.out, "Description:\n%s\n", it.Description)
	}
	for _, p := range it.Photos {
		fmt.Fprintf(a.out, "Photo %s (%s): %s\n", p.ID, p.ContentType, p.URL)
	}
}

func (a *App) AddItem(ctx context.Context, _ []string) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Enter description", a.out)
	if err != nil {
		return err
	}
	rawValue, err := getSimpleText(a.reader, "Enter value", a.out)
	if err != nil {
		return err
	}
	value, err := parseValue(rawValue)
	if err != nil {
		return err
	}
	tags, err := GetList(a.reader, "Enter tag ids (comma separated, empty for none)", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	it, err := a.client.CreateItem(ctx, &api.CreateItemRequest{Name: name, Description: description, Value: value, TagIDs: tags})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Item %q created, id %s\n", it.Name, it.ID)
	return nil
}

// EditItem sends only the flags that were given, so "-value 0" and
// "-desc ''" are real updates and "-tags ''" clears the tags.
func (a *App) EditItem(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	req := api.UpdateItemRequest{ItemID: args[0]}

	fs := newFlagSet("edit-item")
	name := fs.String("name", "", "new name")
	desc := fs.String("desc", "", "new description")
	rawValue := fs.String("value", "", "new value")
	tags := fs.String("tags", "", "replacement tag ids, comma separated")
	if err := fs.Parse(args[1:]); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	var visitErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			req.Name = name
		case "desc":
			req.Description = desc
		case "value":
			v, err := parseValue(*rawValue)
			if err != nil {
				visitErr = err
				return
			}
			req.Value = &v
		case "tags":
			ids := splitList(*tags)
			req.TagIDs = &ids
		}
	})
	if visitErr != nil {
		return visitErr
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	it, err := a.client.UpdateItem(ctx, &req)
	if err != nil {
		return err
	}
	a.printItem(it)
	return nil
}

func (a *App) DeleteItem(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.DeleteItem(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Item deleted")
	return nil
}

// AddPhoto registers a photo for the item and uploads the file to the
// returned presigned URL.
func (a *App) AddPhoto(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	itemID, path := args[0], args[1]

	data, err := readPhoto(path)
	if err != nil {
		return err
	}
	contentType, _, err := mime.ParseMediaType(http.DetectContentType(data))
	if err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	upload, err := a.client.AddItemPhoto(ctx, itemID, contentType)
	if err != nil {
		return err
	}
	if err := uploadPhoto(ctx, upload.UploadURL, upload.ContentType, data); err != nil {
		return fmt.Errorf("photo %s registered but upload failed, delete it with delete-photo: %w", upload.PhotoID, err)
	}
	fmt.Fprintf(a.out, "Photo %s uploaded\n", upload.PhotoID)
	return nil
}

func (a *App) DeletePhoto(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.DeleteItemPhoto(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Photo deleted")
	return nil
}

func parseValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	return v, nil
}

func readPhoto(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxPhotoSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxPhotoSize {
		return nil, fmt.Errorf("%s is larger than %d MiB", path, maxPhotoSize>>20)
	}
	return data, nil
}
