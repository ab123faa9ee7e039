package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"

	"github.com/askuni/kbase"
	"github.com/askuni/kbase/core"
)

// documents is a small bilingual sample corpus of crawled university pages,
// used to exercise search locally without running a crawler.
var documents = []*core.Document{
	{
		URL:      "https://tuyensinh.example.edu.vn/thong-bao-tuyen-sinh-dai-hoc-2025",
		Title:    "Thông báo tuyển sinh đại học chính quy năm 2025",
		Content:  "Trường Đại học thông báo tuyển sinh đại học hệ chính quy năm 2025 với tổng chỉ tiêu 3.500 sinh viên cho 25 ngành đào tạo. Phương thức xét tuyển gồm xét tuyển thẳng theo quy chế của Bộ Giáo dục và Đào tạo, xét tuyển dựa trên kết quả kỳ thi tốt nghiệp trung học phổ thông, xét tuyển dựa trên kết quả học tập bậc trung học phổ thông (học bạ), và xét tuyển kết hợp chứng chỉ ngoại ngữ quốc tế. Thời gian nhận hồ sơ đăng ký xét tuyển từ ngày 15 tháng 3 đến ngày 30 tháng 6 năm 2025. Thí sinh đăng ký trực tuyến qua cổng thông tin tuyển sinh của trường hoặc nộp hồ sơ trực tiếp tại phòng tuyển sinh.",
		Keywords: []string{"tuyển sinh", "đại học", "chính quy", "2025", "xét tuyển"},
		Headings: []string{"Chỉ tiêu tuyển sinh", "Phương thức xét tuyển", "Thời gian nhận hồ sơ"},
		Category: core.CategoryAdmissions,
		Year:     2025,
	},
	{
		URL:      "https://tuyensinh.example.edu.vn/nganh-cong-nghe-thong-tin",
		Title:    "Ngành Công nghệ thông tin",
		Content:  "Ngành Công nghệ thông tin đào tạo kỹ sư có kiến thức nền tảng về khoa học máy tính, kỹ thuật phần mềm, hệ thống thông tin và trí tuệ nhân tạo. Chương trình học kéo dài 4,5 năm với 150 tín chỉ, bao gồm các học phần về lập trình, cấu trúc dữ liệu và giải thuật, cơ sở dữ liệu, mạng máy tính, an toàn thông tin và học máy. Sinh viên năm cuối thực tập tại các doanh nghiệp công nghệ đối tác của trường. Cơ hội việc làm sau tốt nghiệp gồm kỹ sư phần mềm, kỹ sư dữ liệu, chuyên viên an ninh mạng và quản trị hệ thống.",
		Keywords: []string{"công nghệ thông tin", "ngành đào tạo", "kỹ sư", "lập trình"},
		Headings: []string{"Mục tiêu đào tạo", "Chương trình học", "Cơ hội việc làm"},
		Category: core.CategoryPrograms,
		Year:     2025,
	},
	{
		URL:      "https://tuyensinh.example.edu.vn/hoc-bong-khuyen-khich-hoc-tap",
		Title:    "Học bổng khuyến khích học tập năm học 2025-2026",
		Content:  "Nhà trường dành quỹ học bổng khuyến khích học tập trị giá 15 tỷ đồng cho năm học 2025-2026. Học bổng loại xuất sắc trị giá 100% học phí dành cho sinh viên có điểm trung bình tích lũy từ 3,6 trở lên và điểm rèn luyện đạt loại xuất sắc. Học bổng loại giỏi trị giá 75% học phí và học bổng loại khá trị giá 50% học phí. Ngoài ra trường còn có học bổng tài năng dành cho thủ khoa đầu vào các ngành, học bổng dành cho sinh viên có hoàn cảnh khó khăn vươn lên trong học tập, và các học bổng tài trợ từ doanh nghiệp đối tác.",
		Keywords: []string{"học bổng", "khuyến khích học tập", "sinh viên", "học phí"},
		Headings: []string{"Đối tượng xét cấp", "Mức học bổng", "Hồ sơ đăng ký"},
		Category: core.CategoryScholarship,
		Year:     2025,
	},
	{
		URL:      "https://tuyensinh.example.edu.vn/hoc-phi-nam-hoc-2025-2026",
		Title:    "Mức học phí năm học 2025-2026",
		Content:  "Mức học phí năm học 2025-2026 áp dụng cho sinh viên hệ chính quy như sau. Khối ngành kỹ thuật và công nghệ: 28 triệu đồng mỗi năm học. Khối ngành kinh tế và quản lý: 25 triệu đồng mỗi năm học. Khối ngành khoa học xã hội: 22 triệu đồng mỗi năm học. Chương trình chất lượng cao giảng dạy bằng tiếng Anh có mức học phí 45 triệu đồng mỗi năm học. Học phí được thu theo học kỳ, sinh viên có thể nộp qua cổng thanh toán trực tuyến hoặc chuyển khoản ngân hàng. Lộ trình tăng học phí không vượt quá 10% mỗi năm theo quy định.",
		Keywords: []string{"học phí", "2025-2026", "chính quy", "chất lượng cao"},
		Headings: []string{"Mức thu theo khối ngành", "Phương thức nộp học phí"},
		Category: core.CategoryTuition,
		Year:     2025,
	},
	{
		URL:      "https://tuyensinh.example.edu.vn/en/international-admission-2025",
		Title:    "International Admission Program 2025",
		Content:  "The university welcomes applications from international students for the 2025 academic year. English-taught programs are available in Computer Science, Business Administration, and International Relations. Applicants must hold a high school diploma equivalent to the Vietnamese upper secondary certificate and demonstrate English proficiency with IELTS 6.0 or TOEFL iBT 79 or higher. Application materials include the online application form, academic transcripts, a copy of the passport, and a statement of purpose. The application deadline is May 31, 2025. Tuition waivers covering up to fifty percent are available for applicants with outstanding academic records.",
		Keywords: []string{"international admission", "english program", "2025", "tuyển sinh"},
		Headings: []string{"Available Programs", "Entry Requirements", "How to Apply"},
		Category: core.CategoryAdmissions,
		Year:     2025,
	},
	{
		URL:      "https://tuyensinh.example.edu.vn/thong-bao-lich-thi-danh-gia-nang-luc",
		Title:    "Thông báo lịch thi đánh giá năng lực đợt 1 năm 2025",
		Content:  "Trường thông báo lịch thi đánh giá năng lực đợt 1 năm 2025 dành cho thí sinh đăng ký xét tuyển bằng phương thức thi đánh giá năng lực. Kỳ thi được tổ chức vào ngày 6 tháng 4 năm 2025 tại ba điểm thi ở Hà Nội, Đà Nẵng và Thành phố Hồ Chí Minh. Bài thi gồm ba phần: tư duy định lượng, tư duy định tính và giải quyết vấn đề, với tổng thời gian làm bài 150 phút trên máy tính. Thí sinh đăng ký dự thi trực tuyến và nhận giấy báo dự thi qua email trước ngày thi một tuần. Kết quả thi được công bố sau 10 ngày làm việc.",
		Keywords: []string{"thông báo", "đánh giá năng lực", "lịch thi", "2025"},
		Headings: []string{"Thời gian và địa điểm", "Cấu trúc bài thi", "Đăng ký dự thi"},
		Category: core.CategoryAnnouncement,
		Year:     2025,
	},
}

var (
	seedFileName = flag.String("src", "", "JSON file of seed documents")
	dbPath       = flag.String("db", "./kbase_db", "path to the database directory")
	noEmbed      = flag.Bool("no-embed", false, "skip embedding generation")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// documentsFromFile loads seed documents from a JSON array file.
func documentsFromFile(filename string) ([]*core.Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var docs []*core.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func main() {
	ctx := context.Background()

	opts := []kbase.KnowledgeBaseOption{}
	if *noEmbed {
		opts = append(opts, kbase.WithoutEmbedder())
	}

	kb, err := kbase.Open(ctx, *dbPath, opts...)
	if err != nil {
		panic(err)
	}
	defer kb.Close()

	pipeline, err := kb.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	// Determine source of seed data
	docs := documents
	if seedFileName != nil && *seedFileName != "" {
		docs, err = documentsFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	}

	accepted, err := pipeline.Ingest(ctx, docs...)
	if err != nil {
		panic(err)
	}
	slog.Info("seeded documents", "accepted", accepted, "total", len(docs))

	// Wait for the async embedding workers so vectors are not lost to exit.
	pipeline.Wait()
}
