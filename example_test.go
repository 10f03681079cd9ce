package confreport_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/simp-lee/confreport"
)

func ExampleNew() {
	p, err := confreport.New(confreport.Options{
		Metadata: confreport.Metadata{
			Title: "October 2016 Conference Report",
			Date:  time.Date(2016, time.October, 2, 0, 0, 0, 0, time.UTC),
		},
		Languages:     []string{"eng", "hun"},
		LanguageNames: map[string]string{"hun": "Magyar"},
		Verify:        true,
	})
	if err != nil {
		log.Fatal(err)
	}

	var records []confreport.ChapterRecord // usually from markdown.Converter.LoadDir
	res, err := p.Package(context.Background(), records, "cr_201610.epub")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(res.Path, res.Digest)
}

func ExampleInspect() {
	in, err := confreport.Inspect("cr_201610.epub")
	if err != nil {
		log.Fatal(err)
	}
	defer in.Close()

	if err := in.Verify(); err != nil {
		log.Fatal(err)
	}
	for _, item := range in.TOC {
		fmt.Printf("%s → %s\n", item.Title, item.Href)
	}
}

func ExampleShortSlug() {
	fmt.Println(confreport.ShortSlug("2016/10/eng/gc_2016_10_sat_am_2_Uchtdorf.text"))
	fmt.Println(confreport.ShortSlug("2016/10/hun/Szűcs Ödön.text"))
	// Output:
	// gc-2016-10-sat-am-2-uchtdorf
	// szucs-odon
}

func ExampleParseSourcePath() {
	name, err := confreport.ParseSourcePath("2016/10/eng/gc_2016_10_sun_pm_3_Holland_Jeffrey.text")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(name.Year, name.Month, name.Session, name.Order, name.Name)
	// Output: 2016 10 sun_pm 3 Holland_Jeffrey
}

func ExampleChapterID() {
	rec, err := confreport.NewChapterRecord(confreport.ChapterFields{
		SourcePath: "2016/10/eng/gc_2016_10_sat_am_1_Eyring.text",
		Author:     "Henry B. Eyring",
		Title:      "Walk in the Light",
		Language:   "eng",
		Session:    "sat_am",
		Order:      1,
		Body:       "<p>Talk text.</p>",
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(confreport.ChapterID(rec))
	// Output: eng-sat_am-1-gc-2016-10-sat-am-1-eyring
}
