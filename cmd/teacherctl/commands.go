package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"

	"teacherdash/internal/attendance"
	"teacherdash/internal/export"
	"teacherdash/internal/model"
)

const msgFeedbackSaved = "Baholar muvaffaqiyatli saqlandi!"

func (cli *commandLine) table() *tabwriter.Writer {
	return tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
}

func (cli *commandLine) groups(ctx context.Context, _ []string) error {
	if err := cli.ready(ctx); err != nil {
		return err
	}
	groups := cli.ctrl.Groups()
	if len(groups) == 0 {
		fmt.Fprintln(cli.out, "Guruhlar mavjud emas")
		return nil
	}
	w := cli.table()
	fmt.Fprintln(w, "KOD\tNOMI\tO'QUVCHILAR\tJADVAL\tHOLAT\tID")
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n", g.GroupID, g.DisplayName(), g.Students(), schedule(g), g.Status, g.ID)
	}
	return w.Flush()
}

func schedule(g model.Group) string {
	return strings.TrimSpace(g.DarsJadvali + " " + g.DarsVaqt)
}

// groupFlags parses -group and, with dated set, -date for a group scoped command.
type groupFlags struct {
	fs    *flag.FlagSet
	group *string
	date  *string
}

func (cli *commandLine) groupFlags(name string, dated bool) groupFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	gf := groupFlags{fs: fs, group: fs.String("group", "", "group id or code")}
	if dated {
		gf.date = fs.String("date", "", "date as YYYY-MM-DD (default today)")
	}
	return gf
}

func (gf groupFlags) parse(args []string) error {
	if err := gf.fs.Parse(args); err != nil {
		return errHelp
	}
	if *gf.group == "" {
		gf.fs.Usage()
		return errHelp
	}
	return nil
}

// selectGroup loads the session and selects the group named by ref.
func (cli *commandLine) selectGroup(ctx context.Context, ref string) (model.Group, error) {
	if err := cli.ready(ctx); err != nil {
		return model.Group{}, err
	}
	for _, g := range cli.ctrl.Groups() {
		if g.ID == ref || strings.EqualFold(g.GroupID, ref) {
			return cli.ctrl.SelectGroup(ctx, g.ID)
		}
	}
	return model.Group{}, fmt.Errorf("guruh topilmadi: %s", ref)
}

func (cli *commandLine) dateOf(gf groupFlags) string {
	if gf.date == nil || *gf.date == "" {
		return cli.ctrl.Today()
	}
	return *gf.date
}

func (cli *commandLine) students(ctx context.Context, args []string) error {
	gf := cli.groupFlags("students", false)
	if err := gf.parse(args); err != nil {
		return err
	}
	if _, err := cli.selectGroup(ctx, *gf.group); err != nil {
		return err
	}
	students, err := cli.ctrl.LoadStudents(ctx)
	if err != nil {
		return err
	}
	if len(students) == 0 {
		fmt.Fprintln(cli.out, "Guruhda o'quvchilar yo'q")
		return nil
	}
	w := cli.table()
	fmt.Fprintln(w, "#\tISM\tHOLAT\tTELEFON\tID")
	for i, st := range students {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", i+1, st.FullName(), st.Status, st.Phone, st.ID)
	}
	return w.Flush()
}

func (cli *commandLine) attendance(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	switch args[0] {
	case "show":
		return cli.showAttendance(ctx, args[1:])
	case "mark":
		return cli.markAttendance(ctx, args[1:])
	}
	cli.printUsage()
	return errHelp
}

// sheet selects the group and builds its attendance sheet for the parsed date.
// A sheet without records comes back with the records error when those failed.
func (cli *commandLine) sheet(ctx context.Context, gf groupFlags) (model.Group, *attendance.Sheet, error) {
	g, err := cli.selectGroup(ctx, *gf.group)
	if err != nil {
		return g, nil, err
	}
	students, err := cli.ctrl.Students(ctx)
	if err != nil {
		return g, nil, err
	}
	cli.ctrl.OpenAttendance(ctx, students)
	sheet, err := cli.ctrl.AttendanceSheet(ctx, cli.dateOf(gf))
	return g, sheet, err
}

func (cli *commandLine) showAttendance(ctx context.Context, args []string) error {
	gf := cli.groupFlags("attendance show", true)
	if err := gf.parse(args); err != nil {
		return err
	}
	g, sheet, err := cli.sheet(ctx, gf)
	if sheet == nil {
		return err
	}
	if err != nil {
		fmt.Fprintf(cli.out, "Ogohlantirish: %s\n", err)
	}

	fmt.Fprintf(cli.out, "%s, %s\n", g.DisplayName(), sheet.Date)
	w := cli.table()
	fmt.Fprintln(w, "#\tISM\tHOLAT")
	for i, st := range sheet.Students {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, st.FullName(), sheet.Badge(st.ID))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	sum := sheet.Summary()
	fmt.Fprintf(cli.out, "Keldi: %d  Kelmadi: %d  Kechikdi: %d  Sababli: %d  Belgilanmagan: %d\n",
		sum.Present, sum.Absent, sum.Late, sum.Excused, sum.Unmarked)
	return nil
}

func (cli *commandLine) markAttendance(ctx context.Context, args []string) error {
	gf := cli.groupFlags("attendance mark", true)
	all := gf.fs.String("all", "", "mark every student: KELDI, KELMADI, KECHIKDI or SABABLI")
	if err := gf.parse(args); err != nil {
		return err
	}
	marks := gf.fs.Args()
	if *all == "" && len(marks) == 0 {
		gf.fs.Usage()
		return errHelp
	}

	_, sheet, err := cli.sheet(ctx, gf)
	if err != nil {
		return err
	}
	if *all != "" {
		status, err := parseStatus(*all)
		if err != nil {
			return err
		}
		sheet.MarkAll(status)
	}
	for _, m := range marks {
		ref, value, ok := strings.Cut(m, "=")
		if !ok {
			return fmt.Errorf("%q: expected STUDENT=STATUS", m)
		}
		st, err := findStudent(sheet.Students, ref)
		if err != nil {
			return err
		}
		status, err := parseStatus(value)
		if err != nil {
			return err
		}
		sheet.Set(st.ID, status)
	}

	res, err := cli.ctrl.SaveAttendance(ctx, sheet)
	if err != nil {
		return err
	}
	if !res.OK() {
		return errors.New(res.Message())
	}
	fmt.Fprintln(cli.out, res.Message())
	return nil
}

func parseStatus(s string) (model.AttendanceStatus, error) {
	status := model.AttendanceStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("%q: noma'lum holat", s)
	}
	return status, nil
}

// findStudent matches ref against student ids, then full names ignoring case.
func findStudent(students []model.Student, ref string) (model.Student, error) {
	for _, st := range students {
		if st.ID == ref || (st.StudentID != "" && st.StudentID == ref) {
			return st, nil
		}
	}
	for _, st := range students {
		if strings.EqualFold(st.FullName(), strings.TrimSpace(ref)) {
			return st, nil
		}
	}
	return model.Student{}, fmt.Errorf("o'quvchi topilmadi: %s", ref)
}

func (cli *commandLine) feedback(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	switch args[0] {
	case "list":
		return cli.listFeedback(ctx, args[1:])
	case "add":
		return cli.addFeedback(ctx, args[1:])
	}
	cli.printUsage()
	return errHelp
}

func (cli *commandLine) listFeedback(ctx context.Context, args []string) error {
	gf := cli.groupFlags("feedback list", true)
	if err := gf.parse(args); err != nil {
		return err
	}
	if _, err := cli.selectGroup(ctx, *gf.group); err != nil {
		return err
	}
	students, err := cli.ctrl.Students(ctx)
	if err != nil {
		return err
	}
	list, err := cli.ctrl.LoadFeedback(ctx, cli.dateOf(gf))
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(cli.out, "Bu sana uchun fikr-mulohazalar yo'q")
		return nil
	}
	w := cli.table()
	fmt.Fprintln(w, "O'QUVCHI\tBALL\tIZOH\tID")
	for _, fb := range list {
		name := "Noma'lum talaba"
		if st, err := findStudent(students, fb.StudentID); err == nil {
			name = st.FullName()
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", name, fb.Ball, fb.Feedback, fb.ID)
	}
	return w.Flush()
}

func (cli *commandLine) addFeedback(ctx context.Context, args []string) error {
	gf := cli.groupFlags("feedback add", false)
	student := gf.fs.String("student", "", "student id or full name")
	ball := gf.fs.String("ball", "", "score from 0 to 100")
	comment := gf.fs.String("comment", "", "comment (default: suggestion for the score)")
	if err := gf.parse(args); err != nil {
		return err
	}
	if *student == "" || *ball == "" {
		gf.fs.Usage()
		return errHelp
	}
	if _, err := cli.selectGroup(ctx, *gf.group); err != nil {
		return err
	}
	form, err := cli.ctrl.FeedbackForm(ctx)
	if err != nil {
		return err
	}
	st, err := findStudent(form.Students, *student)
	if err != nil {
		return err
	}
	e := form.Entry(st.ID)
	if *comment != "" {
		e.SetComment(*comment)
	}
	e.SetBall(*ball)
	if _, err := cli.ctrl.SubmitFeedback(ctx, form); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, msgFeedbackSaved)
	return nil
}

func (cli *commandLine) export(ctx context.Context, args []string) error {
	gf := cli.groupFlags("export", true)
	out := gf.fs.String("out", "", "output file (default davomat_<code>_<date>.xlsx)")
	if err := gf.parse(args); err != nil {
		return err
	}
	g, sheet, err := cli.sheet(ctx, gf)
	if err != nil {
		return err
	}
	path := *out
	if path == "" {
		path = export.Filename(g, sheet.Date)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating export file")
	}
	if err := export.Attendance(f, g, sheet); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "writing export file")
	}
	fmt.Fprintf(cli.out, "Saqlandi: %s\n", path)
	return nil
}
